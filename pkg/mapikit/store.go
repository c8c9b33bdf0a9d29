package mapikit

import (
	"iter"

	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// MsgStore is an open message store. Releasing it logs the store off
// first.
type MsgStore struct {
	*Prop
}

func newMsgStore(h *Handle) (Object, error) {
	if err := capable[provider.MsgStore](h); err != nil {
		return nil, err
	}
	h.teardown = func(raw provider.Unknown) error {
		return raw.(provider.MsgStore).StoreLogoff(0)
	}
	return &MsgStore{Prop: &Prop{Handle: h}}, nil
}

// OpenEntry opens an object in the store by entry id.
func (m *MsgStore) OpenEntry(entryID []byte, flags uint32) (Object, error) {
	raw, err := rawAs[provider.MsgStore](m.Handle)
	if err != nil {
		return nil, err
	}
	obj, err := raw.OpenEntry(entryID, flags)
	if err != nil {
		return nil, m.annotate(err)
	}
	return m.env.registry.wrap(m.env, obj)
}

// RootFolder opens the root folder of the store.
func (m *MsgStore) RootFolder(flags uint32) (*Folder, error) {
	raw, err := rawAs[provider.MsgStore](m.Handle)
	if err != nil {
		return nil, err
	}
	obj, err := raw.OpenEntry(nil, flags)
	if err != nil {
		return nil, m.annotate(err)
	}
	return wrapAs[*Folder](m.env, obj)
}

// Container is a property bag with contents and hierarchy tables.
type Container struct {
	*Prop
}

func newContainer(h *Handle) (Object, error) {
	if err := capable[provider.Container](h); err != nil {
		return nil, err
	}
	return &Container{Prop: &Prop{Handle: h}}, nil
}

// ContentsTable opens the table of the container's contents.
func (c *Container) ContentsTable(flags uint32) (*Table, error) {
	raw, err := rawAs[provider.Container](c.Handle)
	if err != nil {
		return nil, err
	}
	t, err := raw.GetContentsTable(flags)
	if err != nil {
		return nil, c.annotate(err)
	}
	return wrapAs[*Table](c.env, t)
}

// HierarchyTable opens the table of the container's child containers.
func (c *Container) HierarchyTable(flags uint32) (*Table, error) {
	raw, err := rawAs[provider.Container](c.Handle)
	if err != nil {
		return nil, err
	}
	t, err := raw.GetHierarchyTable(flags)
	if err != nil {
		return nil, c.annotate(err)
	}
	return wrapAs[*Table](c.env, t)
}

// Folder is a container of messages and subfolders.
type Folder struct {
	*Container
}

func newFolder(h *Handle) (Object, error) {
	if err := capable[provider.Folder](h); err != nil {
		return nil, err
	}
	return &Folder{Container: &Container{Prop: &Prop{Handle: h}}}, nil
}

// Folders scans the hierarchy table. The table is released when the
// sequence ends.
func (f *Folder) Folders() iter.Seq2[types.Row, error] {
	return scanTable(f.HierarchyTable)
}

// Contents scans the contents table. The table is released when the
// sequence ends.
func (f *Folder) Contents() iter.Seq2[types.Row, error] {
	return scanTable(f.ContentsTable)
}

func scanTable(open func(flags uint32) (*Table, error)) iter.Seq2[types.Row, error] {
	return func(yield func(types.Row, error) bool) {
		t, err := open(types.MAPI_UNICODE)
		if err != nil {
			yield(nil, err)
			return
		}
		defer t.Release()
		for row, err := range t.Rows() {
			if !yield(row, err) {
				return
			}
		}
	}
}

// CreateMessage creates a message in the folder.
func (f *Folder) CreateMessage(flags uint32) (*Message, error) {
	raw, err := rawAs[provider.Folder](f.Handle)
	if err != nil {
		return nil, err
	}
	msg, err := raw.CreateMessage(flags)
	if err != nil {
		return nil, f.annotate(err)
	}
	return wrapAs[*Message](f.env, msg)
}

// CreateFolder creates a subfolder named name.
func (f *Folder) CreateFolder(name string, flags uint32) (*Folder, error) {
	raw, err := rawAs[provider.Folder](f.Handle)
	if err != nil {
		return nil, err
	}
	sub, err := raw.CreateFolder(name, flags)
	if err != nil {
		return nil, f.annotate(err)
	}
	return wrapAs[*Folder](f.env, sub)
}

// DeleteMessages deletes the messages with the given entry ids.
func (f *Folder) DeleteMessages(entryIDs [][]byte, flags uint32) error {
	raw, err := rawAs[provider.Folder](f.Handle)
	if err != nil {
		return err
	}
	return f.annotate(raw.DeleteMessages(entryIDs, flags))
}

// Message is a single message.
type Message struct {
	*Prop
}

func newMessage(h *Handle) (Object, error) {
	if err := capable[provider.Message](h); err != nil {
		return nil, err
	}
	return &Message{Prop: &Prop{Handle: h}}, nil
}
