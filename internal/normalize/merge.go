package normalize

import (
	"sort"
	"strings"
	"time"

	"github.com/mkarpov/tipstream/internal/model"
)

const (
	// dedupPrefixLen is how many leading runes are compared when catching
	// reposts that embed another post's opening.
	dedupPrefixLen = 50

	// dedupMinLen guards substring containment: only texts longer than this
	// are meaningful enough to compare.
	dedupMinLen = 30
)

// Merger reassembles multi-part posts into single logical posts and drops
// within-batch duplicates (reposts, quote-posts) independent of the ledger.
type Merger struct {
	maxPartGap time.Duration
}

// NewMerger creates a Merger. maxPartGap bounds the authored-time delta
// between consecutive parts of one sequence; zero falls back to 24h.
func NewMerger(maxPartGap time.Duration) *Merger {
	if maxPartGap <= 0 {
		maxPartGap = 24 * time.Hour
	}
	return &Merger{maxPartGap: maxPartGap}
}

// Merge deduplicates the batch, collapses complete multi-part sequences per
// author, and orders the result newest-first. Posts without any timestamp
// sort last: treating them as "now" would incorrectly rank them newest.
func (m *Merger) Merge(posts []model.NormalizedPost) []model.NormalizedPost {
	if len(posts) == 0 {
		return posts
	}

	posts = dedupBatch(posts)

	byAuthor := make(map[string][]model.NormalizedPost)
	var authors []string
	for _, p := range posts {
		if _, ok := byAuthor[p.Author]; !ok {
			authors = append(authors, p.Author)
		}
		byAuthor[p.Author] = append(byAuthor[p.Author], p)
	}

	var out []model.NormalizedPost
	for _, a := range authors {
		out = append(out, m.mergeAuthor(byAuthor[a])...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, iok := out[i].BestTime()
		tj, jok := out[j].BestTime()
		switch {
		case iok && jok:
			return ti.After(tj)
		case iok:
			return true
		default:
			return false
		}
	})

	return out
}

// mergeAuthor collapses complete part sequences for one author's posts.
func (m *Merger) mergeAuthor(posts []model.NormalizedPost) []model.NormalizedPost {
	var parts, singles []model.NormalizedPost
	for _, p := range posts {
		if p.PartNum != nil {
			parts = append(parts, p)
		} else {
			singles = append(singles, p)
		}
	}
	if len(parts) == 0 {
		return singles
	}

	sort.SliceStable(parts, func(i, j int) bool {
		return *parts[i].PartNum < *parts[j].PartNum
	})

	used := make(map[int]bool)
	var clusters [][]model.NormalizedPost

	for i, p := range parts {
		if used[i] || *p.PartNum != 1 {
			continue
		}

		cluster := []model.NormalizedPost{p}
		used[i] = true
		last := p
		next := 2

		for {
			j := m.findPart(parts, used, next, last)
			if j < 0 {
				break
			}
			cluster = append(cluster, parts[j])
			used[j] = true
			last = parts[j]
			next++
		}

		// A lone part, or a sequence shorter than its declared total,
		// is not a merge: release the members back as standalone posts.
		complete := cluster[0].TotalParts == nil || len(cluster) >= *cluster[0].TotalParts
		if len(cluster) > 1 && complete {
			clusters = append(clusters, cluster)
		} else {
			singles = append(singles, cluster...)
		}
	}

	for i, p := range parts {
		if !used[i] {
			singles = append(singles, p)
		}
	}

	for _, cluster := range clusters {
		singles = append(singles, mergeCluster(cluster))
	}

	return singles
}

// findPart locates an unconsumed post with the wanted part index. When both
// the candidate and the previous part carry precise timestamps, the candidate
// is only accepted within the configured gap: authors recycle "1/2"-style
// captions across unrelated threads.
func (m *Merger) findPart(parts []model.NormalizedPost, used map[int]bool, wanted int, last model.NormalizedPost) int {
	for j, c := range parts {
		if used[j] || *c.PartNum != wanted {
			continue
		}
		if last.Published != nil && c.Published != nil {
			gap := c.Published.Sub(*last.Published)
			if gap < 0 {
				gap = -gap
			}
			if gap > m.maxPartGap {
				continue
			}
		}
		return j
	}
	return -1
}

// mergeCluster concatenates cluster members in index order into one post and
// recomputes the fingerprint over the combined canonical text. Date and URL
// come from the first part.
func mergeCluster(cluster []model.NormalizedPost) model.NormalizedPost {
	texts := make([]string, len(cluster))
	for i, p := range cluster {
		texts[i] = p.Text
	}

	merged := cluster[0]
	merged.Text = strings.Join(texts, "\n\n")
	merged.Fingerprint = Fingerprint(merged.Text)
	merged.PartNum = nil
	merged.TotalParts = nil
	return merged
}

// dedupBatch drops posts whose content duplicates an earlier post in the same
// batch: exact fingerprint match, shared opening prefix in either direction,
// or full substring containment (quote-posts embedding the original).
func dedupBatch(posts []model.NormalizedPost) []model.NormalizedPost {
	seenHashes := make(map[string]bool)
	var seenPrefixes []string
	var seenTexts []string

	var out []model.NormalizedPost
	for _, p := range posts {
		if seenHashes[p.Fingerprint] {
			continue
		}

		prefix := runePrefix(p.Text, dedupPrefixLen)
		if overlapsPrefix(prefix, seenPrefixes) || contained(p.Text, seenTexts) {
			continue
		}

		seenHashes[p.Fingerprint] = true
		seenPrefixes = append(seenPrefixes, prefix)
		seenTexts = append(seenTexts, p.Text)
		out = append(out, p)
	}
	return out
}

func overlapsPrefix(prefix string, seen []string) bool {
	for _, s := range seen {
		if strings.HasPrefix(prefix, s) || strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func contained(text string, seen []string) bool {
	if len([]rune(text)) <= dedupMinLen {
		return false
	}
	for _, s := range seen {
		if len([]rune(s)) <= dedupMinLen {
			continue
		}
		if strings.Contains(text, s) || strings.Contains(s, text) {
			return true
		}
	}
	return false
}

func runePrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
