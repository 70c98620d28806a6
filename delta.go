package pdf

import "sync"

// ObjectRef identifies an indirect PDF object by object number and
// generation, the public counterpart of the package's internal objptr used
// wherever callers build or inspect edits through a DeltaLayer.
type ObjectRef struct {
	Num        uint32
	Generation uint16
}

func (r ObjectRef) ptr() objptr {
	return objptr{id: r.Num, gen: r.Generation}
}

func refOf(ptr objptr) ObjectRef {
	return ObjectRef{Num: ptr.id, Generation: ptr.gen}
}

// DeltaStream is a self-contained stream object: a dictionary plus its
// already-filter-encoded bytes. Objects fetched through a Reader carry a
// stream type backed by a file offset, which has nothing to point at for an
// object that only exists in a delta layer, so edits needing stream data use
// this instead.
type DeltaStream struct {
	Dict dict
	Data []byte
}

// deltaEntry pairs an object with the object number/generation it has been
// assigned within the owning document.
type deltaEntry struct {
	obj        object
	objNum     uint32
	generation uint16
}

// DeltaCommand is a reversible edit applied through a DeltaLayer's
// ExecuteCommand/Undo/Redo history.
type DeltaCommand interface {
	Do(d *DeltaLayer) error
	Undo(d *DeltaLayer) error
	Redo(d *DeltaLayer) error
}

// DeltaLayer tracks edits to a PDF document without touching the base
// file's bytes: modified objects override their base revision, new objects
// are appended past the base object count, and deleted objects are
// suppressed on fetch. None of this is visible to Reader.resolve's normal
// cache/xref path until the layer is attached to the Reader with
// Reader.SetDelta; WriteIncrementalUpdate is what turns it into bytes.
type DeltaLayer struct {
	mu         sync.RWMutex
	modified   map[objptr]deltaEntry
	newObjects []deltaEntry
	deleted    map[objptr]bool
	history    []DeltaCommand
	redoStack  []DeltaCommand
	nextObjNum uint32
	baseSize   uint32
}

// NewDeltaLayer creates an empty delta layer over a document whose xref
// table has baseSize slots; objects added through AddObject are numbered
// starting at baseSize.
func NewDeltaLayer(baseSize int) *DeltaLayer {
	return &DeltaLayer{
		modified:   make(map[objptr]deltaEntry),
		deleted:    make(map[objptr]bool),
		nextObjNum: uint32(baseSize),
		baseSize:   uint32(baseSize),
	}
}

// ModifyObject overrides an existing base-PDF object. obj may be any of the
// package's object representations (nil, bool, int64, float64, string,
// name, dict, array, *DeltaStream) or another ObjectRef for an indirect
// reference.
func (d *DeltaLayer) ModifyObject(ref ObjectRef, obj interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.modifyLocked(ref, obj)
}

func (d *DeltaLayer) modifyLocked(ref ObjectRef, obj interface{}) {
	ptr := ref.ptr()
	delete(d.deleted, ptr)
	d.modified[ptr] = deltaEntry{obj: toObject(obj), objNum: ref.Num, generation: ref.Generation}
}

// AddObject adds a new object with no base-PDF counterpart and returns the
// reference assigned to it.
func (d *DeltaLayer) AddObject(obj interface{}) ObjectRef {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addLocked(obj)
}

func (d *DeltaLayer) addLocked(obj interface{}) ObjectRef {
	num := d.nextObjNum
	d.nextObjNum++
	d.newObjects = append(d.newObjects, deltaEntry{obj: toObject(obj), objNum: num, generation: 0})
	return ObjectRef{Num: num, Generation: 0}
}

// DeleteObject marks ref as deleted, clearing any pending modification for
// it. A deleted object is omitted from Get and from the object resolved by
// a Reader the layer is attached to.
func (d *DeltaLayer) DeleteObject(ref ObjectRef) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleteLocked(ref)
}

func (d *DeltaLayer) deleteLocked(ref ObjectRef) {
	ptr := ref.ptr()
	delete(d.modified, ptr)
	d.deleted[ptr] = true
}

// IsDeleted reports whether ref is marked deleted in the delta layer.
func (d *DeltaLayer) IsDeleted(ref ObjectRef) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.deleted[ref.ptr()]
}

// Get returns the delta layer's override for ref: first the modified set,
// then new objects, else ok is false. It never consults the base document.
func (d *DeltaLayer) Get(ref ObjectRef) (obj object, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.getLocked(ref.ptr())
}

func (d *DeltaLayer) getLocked(ptr objptr) (object, bool) {
	if e, ok := d.modified[ptr]; ok {
		return e.obj, true
	}
	for _, e := range d.newObjects {
		if e.objNum == ptr.id && e.generation == ptr.gen {
			return e.obj, true
		}
	}
	return nil, false
}

// Clear empties all tracked edits and history, resetting the next object
// number back to the base document's object count.
func (d *DeltaLayer) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.modified = make(map[objptr]deltaEntry)
	d.newObjects = nil
	d.deleted = make(map[objptr]bool)
	d.history = nil
	d.redoStack = nil
	d.nextObjNum = d.baseSize
}

// ChangeCount returns the number of modified, added, and deleted objects
// currently tracked.
func (d *DeltaLayer) ChangeCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.modified) + len(d.newObjects) + len(d.deleted)
}

// NextObjNum returns the object number the next AddObject call will assign.
func (d *DeltaLayer) NextObjNum() uint32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.nextObjNum
}

// ExecuteCommand runs cmd's Do step, then pushes it onto the undo history
// and clears the redo stack.
func (d *DeltaLayer) ExecuteCommand(cmd DeltaCommand) error {
	if err := cmd.Do(d); err != nil {
		return err
	}
	d.mu.Lock()
	d.history = append(d.history, cmd)
	d.redoStack = nil
	d.mu.Unlock()
	return nil
}

// Undo reverts the most recently executed (or redone) command and moves it
// to the redo stack.
func (d *DeltaLayer) Undo() error {
	d.mu.Lock()
	if len(d.history) == 0 {
		d.mu.Unlock()
		return &Generic{Msg: "pdf: nothing to undo"}
	}
	cmd := d.history[len(d.history)-1]
	d.history = d.history[:len(d.history)-1]
	d.mu.Unlock()

	if err := cmd.Undo(d); err != nil {
		return err
	}
	d.mu.Lock()
	d.redoStack = append(d.redoStack, cmd)
	d.mu.Unlock()
	return nil
}

// Redo reapplies the most recently undone command.
func (d *DeltaLayer) Redo() error {
	d.mu.Lock()
	if len(d.redoStack) == 0 {
		d.mu.Unlock()
		return &Generic{Msg: "pdf: nothing to redo"}
	}
	cmd := d.redoStack[len(d.redoStack)-1]
	d.redoStack = d.redoStack[:len(d.redoStack)-1]
	d.mu.Unlock()

	if err := cmd.Redo(d); err != nil {
		return err
	}
	d.mu.Lock()
	d.history = append(d.history, cmd)
	d.mu.Unlock()
	return nil
}

// CanUndo reports whether Undo has a command to revert.
func (d *DeltaLayer) CanUndo() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.history) > 0
}

// CanRedo reports whether Redo has a command to reapply.
func (d *DeltaLayer) CanRedo() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.redoStack) > 0
}

// changes returns the modified/new/deleted sets as a stable ordering for
// WriteIncrementalUpdate: all touched object numbers ascending, with the
// object to serialize (nil for a deletion) alongside the generation.
type deltaChange struct {
	num        uint32
	generation uint16
	obj        object // nil if deleted
	deleted    bool
}

func (d *DeltaLayer) changes() []deltaChange {
	d.mu.RLock()
	defer d.mu.RUnlock()

	byNum := make(map[uint32]deltaChange, len(d.modified)+len(d.newObjects)+len(d.deleted))
	for ptr, e := range d.modified {
		byNum[ptr.id] = deltaChange{num: ptr.id, generation: ptr.gen, obj: e.obj}
	}
	for _, e := range d.newObjects {
		byNum[e.objNum] = deltaChange{num: e.objNum, generation: e.generation, obj: e.obj}
	}
	for ptr := range d.deleted {
		byNum[ptr.id] = deltaChange{num: ptr.id, generation: ptr.gen, deleted: true}
	}

	out := make([]deltaChange, 0, len(byNum))
	for _, c := range byNum {
		out = append(out, c)
	}
	sortChanges(out)
	return out
}

func sortChanges(cs []deltaChange) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j-1].num > cs[j].num; j-- {
			cs[j-1], cs[j] = cs[j], cs[j-1]
		}
	}
}

// toObject normalizes the small set of public-facing shims (ObjectRef,
// *DeltaStream) down to the internal object representation; everything
// else (nil, bool, int64, float64, string, name, dict, array) already is
// one.
func toObject(v interface{}) object {
	switch x := v.(type) {
	case ObjectRef:
		return x.ptr()
	case *DeltaStream:
		return x
	default:
		return x
	}
}
