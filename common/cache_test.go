package common

import "testing"

func TestSeenCacheMarksOnce(t *testing.T) {
	c := NewSeenCache(4)
	h := BytesToHash([]byte("hello"))

	if seen := c.MarkSeen(h); seen {
		t.Fatal("first MarkSeen should report unseen")
	}
	if seen := c.MarkSeen(h); !seen {
		t.Fatal("second MarkSeen should report already seen")
	}
}

func TestSeenCacheDistinguishesHashes(t *testing.T) {
	c := NewSeenCache(4)
	a := BytesToHash([]byte("a"))
	b := BytesToHash([]byte("b"))

	c.MarkSeen(a)
	if seen := c.MarkSeen(b); seen {
		t.Fatal("distinct hash should not be reported as seen")
	}
}
