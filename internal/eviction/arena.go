package eviction

import "fmt"

// Handle addresses a slot of the arena.
type Handle int32

const noHandle Handle = -1

type slot struct {
	Entry
	prev, next Handle
	linked     bool
}

// arena stores entries of every queue of a policy in one slice. Links are
// handles, so a detached or released slot can never be reached through a
// dangling pointer. Pointers returned by at are valid until the next alloc.
type arena struct {
	slots []slot
	free  []Handle
}

func (a *arena) alloc(e Entry) Handle {
	s := slot{Entry: e, prev: noHandle, next: noHandle}
	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[h] = s
		return h
	}
	a.slots = append(a.slots, s)
	return Handle(len(a.slots) - 1)
}

func (a *arena) release(h Handle) {
	if a.slots[h].linked {
		panic(fmt.Sprintf("eviction: release of linked slot %d (%q)", h, a.slots[h].Key))
	}
	a.slots[h] = slot{prev: noHandle, next: noHandle}
	a.free = append(a.free, h)
}

func (a *arena) at(h Handle) *slot {
	return &a.slots[h]
}

// queue is a doubly linked list between two sentinel slots. The most
// recently attached entry sits right after head, the oldest right before tail.
type queue struct {
	head, tail Handle
	size       uint64
	len        int
}

func (a *arena) newQueue() queue {
	q := queue{head: a.alloc(Entry{}), tail: a.alloc(Entry{})}
	a.slots[q.head].next = q.tail
	a.slots[q.tail].prev = q.head
	return q
}

// attach links h right after the head sentinel.
func (a *arena) attach(q *queue, h Handle) {
	s := &a.slots[h]
	if s.linked || h == q.head || h == q.tail {
		panic(fmt.Sprintf("eviction: attach of linked slot %d (%q)", h, s.Key))
	}
	first := a.slots[q.head].next
	s.prev, s.next = q.head, first
	a.slots[first].prev = h
	a.slots[q.head].next = h
	s.linked = true
	q.size += s.Size
	q.len++
}

// detach unlinks h from q. Detaching a sentinel or an unlinked slot is a fault.
func (a *arena) detach(q *queue, h Handle) {
	s := &a.slots[h]
	if !s.linked || h == q.head || h == q.tail {
		panic(fmt.Sprintf("eviction: detach of unlinked slot %d (%q)", h, s.Key))
	}
	a.slots[s.prev].next = s.next
	a.slots[s.next].prev = s.prev
	s.prev, s.next = noHandle, noHandle
	s.linked = false
	q.size -= s.Size
	q.len--
}

// back returns the oldest entry of q.
func (a *arena) back(q *queue) (Handle, bool) {
	h := a.slots[q.tail].prev
	return h, h != q.head
}

// front returns the newest entry of q.
func (a *arena) front(q *queue) (Handle, bool) {
	h := a.slots[q.head].next
	return h, h != q.tail
}

// older returns the entry next to h on the tail side, if any.
func (a *arena) older(q *queue, h Handle) (Handle, bool) {
	n := a.slots[h].next
	return n, n != q.tail
}

// newer returns the entry next to h on the head side, if any.
func (a *arena) newer(q *queue, h Handle) (Handle, bool) {
	p := a.slots[h].prev
	return p, p != q.head
}
