package mesh

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/tessera-mesh/tessera-go/pkg/attrib"
	"github.com/tessera-mesh/tessera-go/pkg/log"
)

// AttributeID identifies an attribute within one mesh. IDs are stable
// across renames and are never reused, even after deletion.
type AttributeID uint32

// Registry errors.
var (
	// ErrNameCollision indicates a create or rename target that is
	// already taken.
	ErrNameCollision = errors.New("attribute name already in use")

	// ErrReservedName indicates an operation touching a reserved
	// attribute without the reserved override.
	ErrReservedName = errors.New("attribute name is reserved")

	// ErrNoSuchAttribute indicates a name or id with no registry entry.
	ErrNoSuchAttribute = errors.New("no such attribute")
)

// IsReservedName reports whether name denotes a reserved attribute.
// Reserved names carry a "$" prefix and belong to the mesh's own
// topology channels.
func IsReservedName(name string) bool {
	return strings.HasPrefix(name, "$")
}

// cowPtr is a shared, reference-counted attribute slot. Entries created
// by DuplicateAttribute alias one cowPtr until a write forks them apart.
type cowPtr struct {
	refs atomic.Int32
	attr attrib.AnyAttribute
}

func newCowPtr(a attrib.AnyAttribute) *cowPtr {
	p := &cowPtr{attr: a}
	p.refs.Store(1)
	return p
}

// attrEntry is one registry slot. The entry itself is stable; ptr is
// swapped on copy-on-write forks.
type attrEntry struct {
	id       AttributeID
	name     string
	ptr      *cowPtr
	reserved bool
}

// shared reports whether the entry's storage is aliased by another
// entry.
func (e *attrEntry) shared() bool {
	return e.ptr.refs.Load() > 1
}

// registerAttribute wires a constructed attribute into the registry and
// returns its id.
func (m *Mesh) registerAttribute(name string, a attrib.AnyAttribute, reserved bool) AttributeID {
	m.attrMu.Lock()
	id := m.nextAttrID
	m.nextAttrID++
	e := &attrEntry{id: id, name: name, ptr: newCowPtr(a), reserved: reserved}
	m.attrOrder = append(m.attrOrder, e)
	m.attrByID[id] = e
	m.attrByName[name] = e
	m.attrMu.Unlock()

	m.logRegistry(log.RegistryOpCreate, name, "", e)
	return id
}

func (m *Mesh) entryByName(name string) (*attrEntry, error) {
	m.attrMu.RLock()
	e, ok := m.attrByName[name]
	m.attrMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchAttribute, name)
	}
	return e, nil
}

func (m *Mesh) entryByID(id AttributeID) (*attrEntry, error) {
	m.attrMu.RLock()
	e, ok := m.attrByID[id]
	m.attrMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNoSuchAttribute, id)
	}
	return e, nil
}

// entries returns a snapshot of the registry slots in registration
// order.
func (m *Mesh) entries() []*attrEntry {
	m.attrMu.RLock()
	s := make([]*attrEntry, len(m.attrOrder))
	copy(s, m.attrOrder)
	m.attrMu.RUnlock()
	return s
}

// HasAttribute reports whether name is registered.
func (m *Mesh) HasAttribute(name string) bool {
	m.attrMu.RLock()
	_, ok := m.attrByName[name]
	m.attrMu.RUnlock()
	return ok
}

// AttributeID returns the id registered for name.
func (m *Mesh) AttributeID(name string) (AttributeID, error) {
	e, err := m.entryByName(name)
	if err != nil {
		return 0, err
	}
	return e.id, nil
}

// AttributeName returns the name registered for id.
func (m *Mesh) AttributeName(id AttributeID) (string, error) {
	e, err := m.entryByID(id)
	if err != nil {
		return "", err
	}
	m.attrMu.RLock()
	name := e.name
	m.attrMu.RUnlock()
	return name, nil
}

// AttributeIDs returns all attribute ids in registration order.
func (m *Mesh) AttributeIDs() []AttributeID {
	m.attrMu.RLock()
	ids := make([]AttributeID, len(m.attrOrder))
	for i, e := range m.attrOrder {
		ids[i] = e.id
	}
	m.attrMu.RUnlock()
	return ids
}

// AttributeNames returns all attribute names in registration order.
func (m *Mesh) AttributeNames() []string {
	m.attrMu.RLock()
	names := make([]string, len(m.attrOrder))
	for i, e := range m.attrOrder {
		names[i] = e.name
	}
	m.attrMu.RUnlock()
	return names
}

// AnyAttribute returns the type-erased attribute registered for name.
func (m *Mesh) AnyAttribute(name string) (attrib.AnyAttribute, error) {
	e, err := m.entryByName(name)
	if err != nil {
		return nil, err
	}
	return e.ptr.attr, nil
}

// AnyAttributeByID returns the type-erased attribute registered for id.
func (m *Mesh) AnyAttributeByID(id AttributeID) (attrib.AnyAttribute, error) {
	e, err := m.entryByID(id)
	if err != nil {
		return nil, err
	}
	return e.ptr.attr, nil
}

// DeleteAttribute removes the named attribute. Reserved attributes are
// rejected; use ForceDeleteAttribute for those.
func (m *Mesh) DeleteAttribute(name string) error {
	return m.deleteAttribute(name, false)
}

// ForceDeleteAttribute removes the named attribute even when reserved.
// Removing a topology channel leaves the mesh unusable for topology
// queries; callers own that risk.
func (m *Mesh) ForceDeleteAttribute(name string) error {
	return m.deleteAttribute(name, true)
}

func (m *Mesh) deleteAttribute(name string, force bool) error {
	m.attrMu.Lock()
	e, ok := m.attrByName[name]
	if !ok {
		m.attrMu.Unlock()
		err := fmt.Errorf("%w: %q", ErrNoSuchAttribute, name)
		m.logOpError("DeleteAttribute", name, err)
		return err
	}
	if e.reserved && !force {
		m.attrMu.Unlock()
		err := fmt.Errorf("%w: cannot delete %q", ErrReservedName, name)
		m.logOpError("DeleteAttribute", name, err)
		return err
	}
	delete(m.attrByName, name)
	delete(m.attrByID, e.id)
	m.attrOrder = slices.DeleteFunc(m.attrOrder, func(x *attrEntry) bool { return x == e })
	e.ptr.refs.Add(-1)
	m.attrMu.Unlock()

	m.logRegistry(log.RegistryOpDelete, name, "", e)
	return nil
}

// RenameAttribute changes the name registered for an attribute. The id
// stays the same.
func (m *Mesh) RenameAttribute(oldName, newName string) error {
	if IsReservedName(newName) {
		err := fmt.Errorf("%w: %q", ErrReservedName, newName)
		m.logOpError("RenameAttribute", oldName, err)
		return err
	}
	m.attrMu.Lock()
	e, ok := m.attrByName[oldName]
	if !ok {
		m.attrMu.Unlock()
		err := fmt.Errorf("%w: %q", ErrNoSuchAttribute, oldName)
		m.logOpError("RenameAttribute", oldName, err)
		return err
	}
	if e.reserved {
		m.attrMu.Unlock()
		err := fmt.Errorf("%w: cannot rename %q", ErrReservedName, oldName)
		m.logOpError("RenameAttribute", oldName, err)
		return err
	}
	if _, taken := m.attrByName[newName]; taken {
		m.attrMu.Unlock()
		err := fmt.Errorf("%w: %q", ErrNameCollision, newName)
		m.logOpError("RenameAttribute", oldName, err)
		return err
	}
	delete(m.attrByName, oldName)
	e.name = newName
	m.attrByName[newName] = e
	m.attrMu.Unlock()

	m.logRegistry(log.RegistryOpRename, oldName, newName, e)
	return nil
}

// DuplicateAttribute registers dstName as a storage-sharing alias of
// srcName. Both entries stay independently renamable and deletable; the
// first write through either forks it onto its own copy.
func (m *Mesh) DuplicateAttribute(srcName, dstName string) (AttributeID, error) {
	if IsReservedName(dstName) {
		err := fmt.Errorf("%w: %q", ErrReservedName, dstName)
		m.logOpError("DuplicateAttribute", srcName, err)
		return 0, err
	}
	m.attrMu.Lock()
	src, ok := m.attrByName[srcName]
	if !ok {
		m.attrMu.Unlock()
		err := fmt.Errorf("%w: %q", ErrNoSuchAttribute, srcName)
		m.logOpError("DuplicateAttribute", srcName, err)
		return 0, err
	}
	if _, taken := m.attrByName[dstName]; taken {
		m.attrMu.Unlock()
		err := fmt.Errorf("%w: %q", ErrNameCollision, dstName)
		m.logOpError("DuplicateAttribute", srcName, err)
		return 0, err
	}
	id := m.nextAttrID
	m.nextAttrID++
	e := &attrEntry{id: id, name: dstName, ptr: src.ptr}
	src.ptr.refs.Add(1)
	m.attrOrder = append(m.attrOrder, e)
	m.attrByID[id] = e
	m.attrByName[dstName] = e
	m.attrMu.Unlock()

	m.logRegistry(log.RegistryOpDuplicate, srcName, dstName, e)
	return id, nil
}

// ensureExclusive forks the entry onto its own copy when its storage is
// shared. Racing forks from one shared slot on distinct entries each
// produce an independent copy; the source is never written during a
// fork, so readers cannot observe a half-copied state.
func (m *Mesh) ensureExclusive(e *attrEntry) error {
	if !e.shared() {
		return nil
	}
	old := e.ptr
	clone, err := old.attr.CloneAny()
	if err != nil {
		return fmt.Errorf("copy-on-write fork of %q: %w", e.name, err)
	}
	e.ptr = newCowPtr(clone)
	old.refs.Add(-1)
	m.logRegistry(log.RegistryOpFork, e.name, "", e)
	return nil
}

func (m *Mesh) logRegistry(op log.RegistryOp, name, newName string, e *attrEntry) {
	m.logger.Log(log.Event{
		Category: log.CategoryRegistry,
		Registry: &log.RegistryEvent{
			Op:      op,
			Name:    name,
			NewName: newName,
			ID:      uint32(e.id),
			Element: e.ptr.attr.Element().String(),
			Kind:    e.ptr.attr.Kind().String(),
		},
	})
}

func (m *Mesh) logOpError(op, attr string, err error) {
	m.logger.Log(log.Event{
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Op:        op,
			Message:   err.Error(),
			Attribute: attr,
		},
	})
}
