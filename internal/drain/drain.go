// Package drain clusters log messages into templates with the Drain
// fixed-depth tree algorithm ("Drain: An Online Log Parsing Approach with
// Fixed Depth Tree", ICWS'17).
//
// Tree layout:
//   - Layer 1: the caller's group key (for Cisco logs, the %FAC-SEV-MNEMONIC marker)
//   - Layer 2: token count
//   - Layer 3: first token
//   - Leaf: clusters whose token sequences are similar enough
//
// A Miner is not safe for concurrent use.
package drain

import (
	"strconv"
	"strings"
	"unicode"
)

// Wildcard replaces tokens that differ between messages of one cluster.
const Wildcard = "<*>"

// Config holds miner settings.
type Config struct {
	// MaxChildren bounds first-token children per length node; further
	// first tokens share a wildcard child.
	MaxChildren int

	// MaxClusters bounds the total number of clusters. Messages that would
	// need a new cluster beyond it are reported as not clustered.
	MaxClusters int

	// SimThreshold (0.0-1.0) is the share of equal tokens needed to join a cluster.
	SimThreshold float64

	// ExtraDelimiters split tokens in addition to whitespace.
	ExtraDelimiters []rune
}

// DefaultConfig returns settings tuned for Cisco syslog bodies.
func DefaultConfig() Config {
	return Config{
		MaxChildren:     100,
		MaxClusters:     5000,
		SimThreshold:    0.5,
		ExtraDelimiters: []rune{',', ';', '(', ')', '[', ']', '"'},
	}
}

// Cluster is one learned template.
type Cluster struct {
	ID     int
	tokens []string
	size   int
}

// Template returns the cluster's tokens joined by single spaces.
func (c *Cluster) Template() string {
	return strings.Join(c.tokens, " ")
}

// Size returns how many messages joined the cluster.
func (c *Cluster) Size() int {
	return c.size
}

type node struct {
	children map[string]*node
	wildcard *node
	clusters []*Cluster
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// Miner learns templates online.
type Miner struct {
	cfg    Config
	delims map[rune]bool
	root   *node
	count  int
}

// New creates a miner. Zero-valued config fields take their defaults.
func New(cfg Config) *Miner {
	def := DefaultConfig()
	if cfg.MaxChildren <= 0 {
		cfg.MaxChildren = def.MaxChildren
	}
	if cfg.MaxClusters <= 0 {
		cfg.MaxClusters = def.MaxClusters
	}
	if cfg.SimThreshold <= 0 {
		cfg.SimThreshold = def.SimThreshold
	}

	delims := make(map[rune]bool, len(cfg.ExtraDelimiters))
	for _, r := range cfg.ExtraDelimiters {
		delims[r] = true
	}

	return &Miner{cfg: cfg, delims: delims, root: newNode()}
}

// Len returns the number of clusters.
func (m *Miner) Len() int {
	return m.count
}

// Add files message under group and returns its cluster. The cluster's
// template may generalize as more messages join. ok is false when the
// message is empty or the cluster limit is reached.
func (m *Miner) Add(group, message string) (c *Cluster, ok bool) {
	tokens := tokenize(message, m.delims)
	if len(tokens) == 0 {
		return nil, false
	}

	leaf := m.leaf(group, tokens)

	if best := m.bestCluster(leaf.clusters, tokens); best != nil {
		best.size++
		generalize(best.tokens, tokens)
		return best, true
	}

	if m.count >= m.cfg.MaxClusters {
		return nil, false
	}

	c = &Cluster{
		ID:     m.count,
		tokens: append([]string(nil), tokens...),
		size:   1,
	}
	m.count++
	leaf.clusters = append(leaf.clusters, c)
	return c, true
}

// leaf walks (creating as needed) group, length and first-token levels.
func (m *Miner) leaf(group string, tokens []string) *node {
	current := child(m.root, "g:"+group)
	current = child(current, strconv.Itoa(len(tokens)))

	first := tokens[0]
	if hasDigit(first) {
		first = Wildcard
	}
	if next, exists := current.children[first]; exists {
		return next
	}
	if len(current.children) < m.cfg.MaxChildren {
		return child(current, first)
	}
	if current.wildcard == nil {
		current.wildcard = newNode()
	}
	return current.wildcard
}

func child(n *node, key string) *node {
	next, exists := n.children[key]
	if !exists {
		next = newNode()
		n.children[key] = next
	}
	return next
}

// bestCluster finds the most similar cluster at or above the threshold.
// Ties go to the older cluster.
func (m *Miner) bestCluster(clusters []*Cluster, tokens []string) *Cluster {
	var best *Cluster
	bestScore := 0.0

	for _, c := range clusters {
		score := similarity(c.tokens, tokens)
		if score >= m.cfg.SimThreshold && score > bestScore {
			bestScore = score
			best = c
		}
	}

	return best
}

// similarity computes the share of positions where template and tokens agree.
// Wildcards count as agreement.
func similarity(template, tokens []string) float64 {
	if len(template) != len(tokens) || len(template) == 0 {
		return 0.0
	}

	matched := 0
	for i := range template {
		if template[i] == tokens[i] || template[i] == Wildcard {
			matched++
		}
	}

	return float64(matched) / float64(len(template))
}

// generalize replaces template tokens that differ from tokens with Wildcard.
func generalize(template, tokens []string) {
	for i := range template {
		if template[i] != tokens[i] {
			template[i] = Wildcard
		}
	}
}

// tokenize splits a message on whitespace and the configured delimiters.
func tokenize(message string, delims map[rune]bool) []string {
	if len(delims) == 0 {
		return strings.Fields(message)
	}

	return strings.FieldsFunc(message, func(r rune) bool {
		return unicode.IsSpace(r) || delims[r]
	})
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
