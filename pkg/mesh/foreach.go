package mesh

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tessera-mesh/tessera-go/pkg/attrib"
	"github.com/tessera-mesh/tessera-go/pkg/log"
)

// Visitor receives the attributes matched by a scan. Plain handles
// non-indexed attributes and Indexed handles indexed ones; a nil
// callback skips that shape even when the mask matches.
type Visitor[V attrib.Value] struct {
	Plain   func(*attrib.Attribute[V]) error
	Indexed func(*attrib.IndexedAttribute[V]) error
}

// NamedVisitor is Visitor with the registered name passed alongside.
type NamedVisitor[V attrib.Value] struct {
	Plain   func(string, *attrib.Attribute[V]) error
	Indexed func(string, *attrib.IndexedAttribute[V]) error
}

// Not returns the complement of mask over the valid element bits.
// Useful for scans like "everything except indexed attributes".
func Not(mask attrib.Element) attrib.Element {
	return mask.Not()
}

func (v Visitor[V]) named() NamedVisitor[V] {
	var nv NamedVisitor[V]
	if v.Plain != nil {
		nv.Plain = func(_ string, a *attrib.Attribute[V]) error { return v.Plain(a) }
	}
	if v.Indexed != nil {
		nv.Indexed = func(_ string, ia *attrib.IndexedAttribute[V]) error { return v.Indexed(ia) }
	}
	return nv
}

// SeqForEachAttributeRead visits every attribute of value type V whose
// element kind intersects mask, on the calling goroutine in
// registration order. Explicit ids restrict the scan to those entries,
// in the given order; an unknown id fails the scan. An indexed
// attribute matches only through the ElementIndexed bit and is visited
// as a unit.
func SeqForEachAttributeRead[V attrib.Value](m *Mesh, mask attrib.Element, visit Visitor[V], ids ...AttributeID) error {
	return scanSeq(m, mask, log.ScanRead, visit.named(), ids)
}

// SeqForEachAttributeWrite is SeqForEachAttributeRead with write
// access: storage shared through duplication is forked onto a private
// copy before the visitor observes it.
func SeqForEachAttributeWrite[V attrib.Value](m *Mesh, mask attrib.Element, visit Visitor[V], ids ...AttributeID) error {
	return scanSeq(m, mask, log.ScanWrite, visit.named(), ids)
}

// SeqForEachNamedAttributeRead is SeqForEachAttributeRead passing the
// registered name to the visitor.
func SeqForEachNamedAttributeRead[V attrib.Value](m *Mesh, mask attrib.Element, visit NamedVisitor[V], ids ...AttributeID) error {
	return scanSeq(m, mask, log.ScanRead, visit, ids)
}

// SeqForEachNamedAttributeWrite is SeqForEachAttributeWrite passing the
// registered name to the visitor.
func SeqForEachNamedAttributeWrite[V attrib.Value](m *Mesh, mask attrib.Element, visit NamedVisitor[V], ids ...AttributeID) error {
	return scanSeq(m, mask, log.ScanWrite, visit, ids)
}

// ParForEachAttributeRead fans the scan out over a worker pool, one
// task per matching attribute, with no visiting order guarantee. The
// visitor must be safe to call from multiple goroutines. All tasks run
// to completion; the first captured error is returned. The attribute
// set must not change during the scan.
func ParForEachAttributeRead[V attrib.Value](m *Mesh, mask attrib.Element, visit Visitor[V], ids ...AttributeID) error {
	return scanPar(m, mask, log.ScanRead, visit.named(), ids)
}

// ParForEachAttributeWrite is ParForEachAttributeRead with write
// access. Each matched entry is forked off shared storage at most once
// before its visitor runs; entries aliasing one storage fork
// independently.
func ParForEachAttributeWrite[V attrib.Value](m *Mesh, mask attrib.Element, visit Visitor[V], ids ...AttributeID) error {
	return scanPar(m, mask, log.ScanWrite, visit.named(), ids)
}

// ParForEachNamedAttributeRead is ParForEachAttributeRead passing the
// registered name to the visitor.
func ParForEachNamedAttributeRead[V attrib.Value](m *Mesh, mask attrib.Element, visit NamedVisitor[V], ids ...AttributeID) error {
	return scanPar(m, mask, log.ScanRead, visit, ids)
}

// ParForEachNamedAttributeWrite is ParForEachAttributeWrite passing the
// registered name to the visitor.
func ParForEachNamedAttributeWrite[V attrib.Value](m *Mesh, mask attrib.Element, visit NamedVisitor[V], ids ...AttributeID) error {
	return scanPar(m, mask, log.ScanWrite, visit, ids)
}

// scanEntries resolves the entry set for a scan: the full registry in
// registration order, or the explicitly requested ids.
func (m *Mesh) scanEntries(ids []AttributeID) ([]*attrEntry, error) {
	if len(ids) == 0 {
		return m.entries(), nil
	}
	out := make([]*attrEntry, 0, len(ids))
	for _, id := range ids {
		e, err := m.entryByID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// matchEntry decides whether e participates in a scan over value type V
// under mask, returning the typed handle for its shape.
func matchEntry[V attrib.Value](e *attrEntry, mask attrib.Element) (plain *attrib.Attribute[V], indexed *attrib.IndexedAttribute[V], ok bool) {
	a := e.ptr.attr
	if a.Element() == attrib.ElementIndexed {
		if !mask.Has(attrib.ElementIndexed) {
			return nil, nil, false
		}
		t, isV := a.(*attrib.IndexedAttribute[V])
		if !isV {
			return nil, nil, false
		}
		return nil, t, true
	}
	if !mask.Has(a.Element()) {
		return nil, nil, false
	}
	t, isV := a.(*attrib.Attribute[V])
	if !isV {
		return nil, nil, false
	}
	return t, nil, true
}

// visitOne runs the visitor on one entry if it matches. Write access
// forks shared storage before the visitor observes the attribute.
// Returns whether the visitor was invoked.
func visitOne[V attrib.Value](m *Mesh, e *attrEntry, mask attrib.Element, access log.ScanAccess, visit NamedVisitor[V]) (bool, error) {
	plain, indexed, ok := matchEntry[V](e, mask)
	if !ok {
		return false, nil
	}
	if indexed != nil && visit.Indexed == nil {
		return false, nil
	}
	if plain != nil && visit.Plain == nil {
		return false, nil
	}
	if access == log.ScanWrite {
		if err := m.ensureExclusive(e); err != nil {
			return false, err
		}
		plain, indexed, _ = matchEntry[V](e, mask)
	}
	if indexed != nil {
		return true, visit.Indexed(e.name, indexed)
	}
	return true, visit.Plain(e.name, plain)
}

func scanSeq[V attrib.Value](m *Mesh, mask attrib.Element, access log.ScanAccess, visit NamedVisitor[V], ids []AttributeID) error {
	start := time.Now()
	entries, err := m.scanEntries(ids)
	if err != nil {
		return err
	}
	visited := 0
	for _, e := range entries {
		ok, err := visitOne(m, e, mask, access, visit)
		if ok {
			visited++
		}
		if err != nil {
			m.logOpError("ForEachAttribute", e.name, err)
			return err
		}
	}
	m.logScan(log.ScanSequential, access, mask, visited, time.Since(start))
	return nil
}

func scanPar[V attrib.Value](m *Mesh, mask attrib.Element, access log.ScanAccess, visit NamedVisitor[V], ids []AttributeID) error {
	start := time.Now()
	entries, err := m.scanEntries(ids)
	if err != nil {
		return err
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(entries) {
		workers = len(entries)
	}
	if workers <= 1 {
		visited := 0
		for _, e := range entries {
			ok, err := visitOne(m, e, mask, access, visit)
			if ok {
				visited++
			}
			if err != nil {
				m.logOpError("ForEachAttribute", e.name, err)
				return err
			}
		}
		m.logScan(log.ScanParallel, access, mask, visited, time.Since(start))
		return nil
	}

	var (
		wg       sync.WaitGroup
		next     atomic.Int64
		visited  atomic.Int64
		mu       sync.Mutex
		firstErr error
	)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= len(entries) {
					return
				}
				e := entries[i]
				ok, err := visitOne(m, e, mask, access, visit)
				if ok {
					visited.Add(1)
				}
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
						m.logOpError("ForEachAttribute", e.name, err)
					}
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	if firstErr != nil {
		return firstErr
	}
	m.logScan(log.ScanParallel, access, mask, int(visited.Load()), time.Since(start))
	return nil
}

func (m *Mesh) logScan(mode log.ScanMode, access log.ScanAccess, mask attrib.Element, visited int, d time.Duration) {
	m.logger.Log(log.Event{
		Category: log.CategoryScan,
		Scan: &log.ScanEvent{
			Mode:     mode,
			Access:   access,
			Mask:     uint8(mask),
			Visited:  visited,
			Duration: d,
		},
	})
}
