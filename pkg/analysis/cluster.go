package analysis

import (
	"math"
	"sort"

	"github.com/verseprint/backend/pkg/style"
)

// DocumentNode is one community-detection input: a document with its theme
// hits, signature-phrase usage and embedding.
type DocumentNode struct {
	ID          string
	Themes      []string
	Phrases     []string
	Embedding   []float32
	TopKeywords []string
}

// ClusterConfig tunes the modularity pass.
type ClusterConfig struct {
	Resolution    float64 // modularity resolution, default 1.0
	CosineFloor   float64 // embedding similarity below this adds no weight
	MinMembers    int     // clusters smaller than this are dropped
	MaxIterations int
}

func (c *ClusterConfig) defaults() {
	if c.Resolution <= 0 {
		c.Resolution = 1.0
	}
	if c.CosineFloor <= 0 {
		c.CosineFloor = 0.5
	}
	if c.MinMembers <= 0 {
		c.MinMembers = 2
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = 20
	}
}

// DetectCommunities builds a weighted document graph (shared themes, shared
// signature phrases, embedding cosine above the floor) and partitions it by
// local modularity optimization. Clusters below MinMembers are dropped.
func DetectCommunities(docs []DocumentNode, cfg ClusterConfig) []style.ThematicCluster {
	cfg.defaults()
	n := len(docs)
	if n < 2 {
		return nil
	}

	weights := make([][]float64, n)
	degree := make([]float64, n)
	total := 0.0
	for i := range weights {
		weights[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := edgeWeight(docs[i], docs[j], cfg.CosineFloor)
			if w <= 0 {
				continue
			}
			weights[i][j], weights[j][i] = w, w
			degree[i] += w
			degree[j] += w
			total += w
		}
	}
	if total == 0 {
		return nil
	}

	community := louvainPass(weights, degree, total, cfg)
	return materializeClusters(docs, community, weights, cfg.MinMembers)
}

func edgeWeight(a, b DocumentNode, cosineFloor float64) float64 {
	w := 0.0
	w += 1.0 * float64(sharedCount(a.Themes, b.Themes))
	w += 0.5 * float64(sharedCount(a.Phrases, b.Phrases))
	if cos := CosineSimilarity(a.Embedding, b.Embedding); cos >= cosineFloor {
		w += cos
	}
	return w
}

func sharedCount(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	n := 0
	for _, s := range b {
		if set[s] {
			n++
		}
	}
	return n
}

// louvainPass runs single-level local moving: each node greedily joins the
// neighboring community with the best modularity gain until no move helps.
func louvainPass(weights [][]float64, degree []float64, total float64, cfg ClusterConfig) []int {
	n := len(weights)
	community := make([]int, n)
	for i := range community {
		community[i] = i
	}
	commDegree := make([]float64, n)
	copy(commDegree, degree)

	m2 := 2 * total
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		moved := false
		for i := 0; i < n; i++ {
			cur := community[i]
			commDegree[cur] -= degree[i]

			// Weight from i into each neighboring community.
			links := make(map[int]float64)
			for j := 0; j < n; j++ {
				if w := weights[i][j]; w > 0 && j != i {
					links[community[j]] += w
				}
			}

			best, bestGain := cur, 0.0
			for c, w := range links {
				gain := w - cfg.Resolution*degree[i]*commDegree[c]/m2
				if gain > bestGain || (gain == bestGain && c < best) {
					best, bestGain = c, gain
				}
			}
			if best != cur {
				moved = true
			}
			community[i] = best
			commDegree[best] += degree[i]
		}
		if !moved {
			break
		}
	}
	return community
}

func materializeClusters(docs []DocumentNode, community []int, weights [][]float64, minMembers int) []style.ThematicCluster {
	members := make(map[int][]int)
	for i, c := range community {
		members[c] = append(members[c], i)
	}

	ids := make([]int, 0, len(members))
	for c := range members {
		ids = append(ids, c)
	}
	sort.Ints(ids)

	var out []style.ThematicCluster
	for _, c := range ids {
		idx := members[c]
		if len(idx) < minMembers {
			continue
		}
		cluster := style.ThematicCluster{
			Cohesion: cohesion(idx, weights),
			Keywords: clusterKeywords(docs, idx),
		}
		for _, i := range idx {
			cluster.DocumentIDs = append(cluster.DocumentIDs, docs[i].ID)
		}
		cluster.Label = defaultLabel(cluster.Keywords)
		out = append(out, cluster)
	}
	return out
}

// cohesion is the fraction of possible intra-cluster edges that exist.
func cohesion(idx []int, weights [][]float64) float64 {
	if len(idx) < 2 {
		return 0
	}
	present, possible := 0, len(idx)*(len(idx)-1)/2
	for a := 0; a < len(idx); a++ {
		for b := a + 1; b < len(idx); b++ {
			if weights[idx[a]][idx[b]] > 0 {
				present++
			}
		}
	}
	return float64(present) / float64(possible)
}

// clusterKeywords ranks the themes shared across members; capability-based
// labeling may override these later but never blocks cluster creation.
func clusterKeywords(docs []DocumentNode, idx []int) []string {
	counts := make(map[string]int)
	for _, i := range idx {
		for _, t := range docs[i].Themes {
			counts[t]++
		}
		for _, k := range docs[i].TopKeywords {
			counts[k]++
		}
	}
	type kw struct {
		word string
		n    int
	}
	ranked := make([]kw, 0, len(counts))
	for w, n := range counts {
		ranked = append(ranked, kw{w, n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].n != ranked[j].n {
			return ranked[i].n > ranked[j].n
		}
		return ranked[i].word < ranked[j].word
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	out := make([]string, len(ranked))
	for i, k := range ranked {
		out[i] = k.word
	}
	return out
}

func defaultLabel(keywords []string) string {
	switch len(keywords) {
	case 0:
		return "misc"
	case 1:
		return keywords[0]
	default:
		return keywords[0] + " / " + keywords[1]
	}
}

// CosineSimilarity returns the cosine of two vectors, 0 when either is
// empty or the dimensions differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
