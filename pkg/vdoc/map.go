package vdoc

import "github.com/viewbind/viewbind/pkg/position"

// The mapping functions are pure: all state travels in the Record. Both
// directions clamp boundary offsets instead of erroring; the only failure
// mode is a virtual span that lies entirely inside synthetic scaffolding,
// reported as ok == false.

// ForwardOffset translates a template offset into the virtual document.
// When the expression root was rewritten, everything shifts right by the
// receiver prefix. The result always lands inside the value range.
func (r Record) ForwardOffset(templateOffset int) int {
	rel := templateOffset - r.Template.Start
	v := r.Value.Start + rel
	if r.RewroteImplicitReceiver {
		v += ReceiverPrefixLen
	}
	return r.Value.Clamp(v)
}

// BackwardRange translates a virtual span back into template coordinates.
// A span entirely inside the synthetic receiver prefix has no template
// counterpart.
func (r Record) BackwardRange(v position.Range) (position.Range, bool) {
	if r.RewroteImplicitReceiver {
		prefixEnd := r.Value.Start + ReceiverPrefixLen
		if v.Start >= r.Value.Start && v.Start < prefixEnd && v.End <= prefixEnd {
			return position.Range{}, false
		}
	}

	start := r.backwardOffset(v.Start)
	end := r.backwardOffset(v.End)
	return position.NewRange(start, end), true
}

// BackwardOffset translates a single virtual offset; offsets inside the
// receiver prefix clamp to the expression start rather than failing, so
// cursor positions always resolve somewhere sensible.
func (r Record) BackwardOffset(virtualOffset int) int {
	return r.backwardOffset(virtualOffset)
}

func (r Record) backwardOffset(off int) int {
	rel := off - r.Value.Start
	if r.RewroteImplicitReceiver {
		rel -= ReceiverPrefixLen
	}
	return r.Template.Clamp(r.Template.Start + rel)
}

// FindByTemplateOffset returns the index of the first record whose
// template range contains the offset. Records are sorted by template
// start, so a linear scan with an early exit is enough at the sizes
// templates reach.
func FindByTemplateOffset(records []Record, off int) (int, bool) {
	for i, r := range records {
		if r.Template.Contains(off) {
			return i, true
		}
		if r.Template.Start > off {
			break
		}
	}
	return 0, false
}

// FindByValueRange returns the index of the first record whose value range
// overlaps the given virtual span.
func FindByValueRange(records []Record, v position.Range) (int, bool) {
	for i, r := range records {
		if r.Value.Overlaps(v) {
			return i, true
		}
	}
	return 0, false
}
