package recipe

import (
	"fmt"
	"time"

	flatbuffers "github.com/google/flatbuffers/go"
)

// Record describes the last successful build of a recipe.
type Record struct {
	Name     string
	Version  string
	Hash     string
	Platform string
	Built    time.Time
}

// vtable slots of the RecipeRecord table in record.fbs.
const (
	slotName = iota
	slotVersion
	slotHash
	slotPlatform
	slotBuiltUnix
	slotCount
)

// Marshal encodes r as a RecipeRecord flatbuffer.
func (r *Record) Marshal() []byte {
	b := flatbuffers.NewBuilder(128)
	name := b.CreateString(r.Name)
	version := b.CreateString(r.Version)
	hash := b.CreateString(r.Hash)
	platform := b.CreateString(r.Platform)

	b.StartObject(slotCount)
	b.PrependUOffsetTSlot(slotName, name, 0)
	b.PrependUOffsetTSlot(slotVersion, version, 0)
	b.PrependUOffsetTSlot(slotHash, hash, 0)
	b.PrependUOffsetTSlot(slotPlatform, platform, 0)
	b.PrependInt64Slot(slotBuiltUnix, r.Built.Unix(), 0)
	b.Finish(b.EndObject())
	return b.FinishedBytes()
}

// UnmarshalRecord decodes a RecipeRecord flatbuffer.
func UnmarshalRecord(buf []byte) (*Record, error) {
	if len(buf) < flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("recipe record too short (%d bytes)", len(buf))
	}
	n := flatbuffers.GetUOffsetT(buf)
	if int(n) >= len(buf) {
		return nil, fmt.Errorf("recipe record has invalid root offset %d", n)
	}
	t := &flatbuffers.Table{Bytes: buf, Pos: n}

	return &Record{
		Name:     tableString(t, slotName),
		Version:  tableString(t, slotVersion),
		Hash:     tableString(t, slotHash),
		Platform: tableString(t, slotPlatform),
		Built:    time.Unix(tableInt64(t, slotBuiltUnix), 0),
	}, nil
}

func fieldOffset(slot int) flatbuffers.VOffsetT {
	return flatbuffers.VOffsetT(4 + 2*slot)
}

func tableString(t *flatbuffers.Table, slot int) string {
	o := flatbuffers.UOffsetT(t.Offset(fieldOffset(slot)))
	if o == 0 {
		return ""
	}
	return t.String(o + t.Pos)
}

func tableInt64(t *flatbuffers.Table, slot int) int64 {
	o := flatbuffers.UOffsetT(t.Offset(fieldOffset(slot)))
	if o == 0 {
		return 0
	}
	return t.GetInt64(o + t.Pos)
}
