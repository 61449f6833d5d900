package models

// BuildCommentTree turns the flat, chronologically ascending comment list of
// a post into a two-level forest. Comments without a parent become roots, in
// the order they appear (oldest first — within a thread the conversation
// reads top to bottom, unlike listings which are newest first). Comments
// whose parent is present are appended to that parent's Replies, preserving
// the ascending order of the input.
//
// A comment whose declared parent is not in the input set is dropped
// entirely: it is neither promoted to a root nor reported as an error. Such
// rows only occur with inconsistent data (e.g. a parent on another post).
func BuildCommentTree(flat []*Comment) []*Comment {
	index := make(map[uint]*Comment, len(flat))
	for _, c := range flat {
		c.Replies = []*Comment{}
		index[c.ID] = c
	}

	roots := make([]*Comment, 0, len(flat))
	for _, c := range flat {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		if parent, ok := index[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, c)
		}
	}
	return roots
}
