package chat

import (
	"sort"
	"sync"
)

// Directory is the registry of joined connections. All methods are safe for
// concurrent use.
type Directory struct {
	mu    sync.RWMutex
	users map[Identity]*User
	seq   uint64
}

func NewDirectory() *Directory {
	return &Directory{users: make(map[Identity]*User)}
}

// Roster returns the display names of all joined users in join order.
func (d *Directory) Roster() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rosterLocked()
}

// Insert adds or replaces the entry for id. A replaced entry keeps its join
// position.
func (d *Directory) Insert(id Identity, name string, out LineSender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.insertLocked(id, name, out)
}

// Join snapshots the roster, inserts id, and calls greet with the snapshot
// before any other goroutine can observe or mutate the Directory. greet must
// not block and must not call back into the Directory.
func (d *Directory) Join(id Identity, name string, out LineSender, greet func(roster []string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	roster := d.rosterLocked()
	d.insertLocked(id, name, out)
	if greet != nil {
		greet(roster)
	}
}

// Remove deletes the entry for id and reports whether it was present.
func (d *Directory) Remove(id Identity) (User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[id]
	if !ok {
		return User{}, false
	}
	delete(d.users, id)
	ConnectedClients.Set(float64(len(d.users)))
	return *u, true
}

// Recipients returns a copy of every entry except the excluded identity.
func (d *Directory) Recipients(excluding Identity) []Recipient {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Recipient, 0, len(d.users))
	for _, u := range d.sortedLocked() {
		if u.ID == excluding {
			continue
		}
		out = append(out, Recipient{ID: u.ID, Name: u.Name, Out: u.Out})
	}
	return out
}

// Name returns the display name registered for id.
func (d *Directory) Name(id Identity) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return "", false
	}
	return u.Name, true
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}

func (d *Directory) insertLocked(id Identity, name string, out LineSender) {
	if u, ok := d.users[id]; ok {
		u.Name = name
		u.Out = out
		return
	}
	d.seq++
	d.users[id] = &User{ID: id, Name: name, Out: out, seq: d.seq}
	ConnectedClients.Set(float64(len(d.users)))
}

func (d *Directory) rosterLocked() []string {
	users := d.sortedLocked()
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Name)
	}
	return names
}

func (d *Directory) sortedLocked() []*User {
	users := make([]*User, 0, len(d.users))
	for _, u := range d.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].seq < users[j].seq })
	return users
}
