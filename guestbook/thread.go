package guestbook

import "slices"

// Node is one entry in the thread view together with its replies.
type Node struct {
	Entry Entry

	// DisplayName is the bot name for automated entries, the author otherwise.
	DisplayName string

	// ReplyingTo is the parent's display name, or the fallback label when the
	// parent was evicted. Empty for root entries.
	ReplyingTo string

	// Depth is 0 for the root bucket.
	Depth int

	// Replies are ordered newest first.
	Replies []*Node
}

// ThreadView is the reply tree derived from a flat entry list.
type ThreadView struct {
	// Roots holds root entries and entries whose parent is gone, newest first.
	Roots []*Node
}

// Walk visits every node depth-first, parents before their replies.
func (v ThreadView) Walk(fn func(n *Node)) {
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			fn(n)
			walk(n.Replies)
		}
	}
	walk(v.Roots)
}

// Len returns the number of nodes in the view.
func (v ThreadView) Len() int {
	n := 0
	v.Walk(func(*Node) { n++ })
	return n
}

// BuildThreadView derives the reply tree from the current entries.
// The result shares nothing with the Book and can be recomputed at any time.
func (b *Book) BuildThreadView() ThreadView {
	b.mu.Lock()
	entries := cloneEntries(b.entries)
	b.mu.Unlock()
	return BuildThread(entries, b.config)
}

// BuildThread groups entries by parent and orders every group by CreatedAt,
// newest first. Ties keep list order. Entries without a parent, or whose
// parent is not in the list, land in the root bucket.
func BuildThread(entries []Entry, config Config) ThreadView {
	config.validate()
	byID := indexByID(entries)

	const root = "\x00root"
	groups := make(map[string][]int)
	for i, e := range entries {
		key := root
		if p := e.Parent(); p != "" {
			if _, ok := byID[p]; ok {
				key = p
			}
		}
		groups[key] = append(groups[key], i)
	}
	for _, g := range groups {
		slices.SortStableFunc(g, func(a, b int) int {
			return entries[b].CreatedAt.Compare(entries[a].CreatedAt)
		})
	}

	// Each ID is expanded once, so duplicated IDs or parent cycles in loaded
	// data cannot recurse forever.
	expanded := make(map[string]bool)
	var build func(key string, depth int) []*Node
	build = func(key string, depth int) []*Node {
		idx := groups[key]
		if len(idx) == 0 {
			return nil
		}
		nodes := make([]*Node, 0, len(idx))
		for _, i := range idx {
			e := entries[i]
			n := &Node{
				Entry:       e,
				DisplayName: displayName(e, config),
				Depth:       depth,
			}
			if !e.IsRoot() {
				n.ReplyingTo = labelFor(entries, byID, e.Parent(), config)
			}
			if e.ID != "" && !expanded[e.ID] {
				expanded[e.ID] = true
				n.Replies = build(e.ID, depth+1)
			}
			nodes = append(nodes, n)
		}
		return nodes
	}

	return ThreadView{Roots: build(root, 0)}
}

// PreviewItem is a compact root entry for a summary card.
type PreviewItem struct {
	ID          string
	DisplayName string
	Message     string
	Automated   bool
}

// Preview returns up to n root entries in list order, newest first.
func (b *Book) Preview(n int) []PreviewItem {
	b.mu.Lock()
	defer b.mu.Unlock()

	var items []PreviewItem
	for _, e := range b.entries {
		if len(items) >= n {
			break
		}
		if !e.IsRoot() {
			continue
		}
		items = append(items, PreviewItem{
			ID:          e.ID,
			DisplayName: displayName(e, b.config),
			Message:     e.Message,
			Automated:   e.Automated,
		})
	}
	return items
}

func (b *Book) labelFor(byID map[string]int, id string) string {
	return labelFor(b.entries, byID, id, b.config)
}

func displayName(e Entry, config Config) string {
	if e.Automated {
		return config.BotName
	}
	return e.Name
}

func labelFor(entries []Entry, byID map[string]int, id string, config Config) string {
	if i, ok := byID[id]; ok {
		if name := displayName(entries[i], config); name != "" {
			return name
		}
	}
	return config.FallbackLabel
}

// indexByID maps IDs to their first position in entries.
func indexByID(entries []Entry) map[string]int {
	byID := make(map[string]int, len(entries))
	for i, e := range entries {
		if _, dup := byID[e.ID]; !dup {
			byID[e.ID] = i
		}
	}
	return byID
}
