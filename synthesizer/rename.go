package synthesizer

import (
	"fmt"

	"github.com/minio/highwayhash"

	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
)

// hashKey mirrors inspector/graph/hash.go's fixed 32-byte highwayhash key —
// same library, same recipe, retargeted from source-content hashing to
// C-function-body hashing for spec §4.4 Step 3's dedup-by-body pass.
var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// RenameFunctions implements spec §4.4 Step 2: every Map/CoalescedMap/
// ParallelMap/ZipWithN function is renamed to "f<leaf-id>_<original-name>
// <index>" to guarantee global uniqueness, since the same original function
// may be referenced by several leaves (the registry dedups by name) but each
// leaf's occurrence needs its own emittable symbol before Step 3's
// body-based re-merge runs.
//
// Renaming clones each FunctionRecord per leaf occurrence rather than
// mutating the shared registry record, so two leaves referencing the same
// original function end up with two independently-renamable copies.
func RenameFunctions(schedule []*ir.Leaf) {
	for _, leaf := range schedule {
		if len(leaf.Functions) == 0 {
			continue
		}
		renamed := make([]*ir.FunctionRecord, len(leaf.Functions))
		for i, fn := range leaf.Functions {
			cp := *fn
			cp.Name = fmt.Sprintf("f%s_%s%d", leaf.ID(), fn.Name, i)
			renamed[i] = &cp
		}
		leaf.Functions = renamed
	}
}

// DeduplicateFunctions implements spec §4.4 Step 3: scan functions in
// schedule order, map body-text to the first ("canonical") name seen for
// that body, and rename every later duplicate to the canonical name so only
// one definition is emitted later (spec §8 testable property 5).
func DeduplicateFunctions(schedule []*ir.Leaf) error {
	canonical := map[uint64]*ir.FunctionRecord{}
	for _, leaf := range schedule {
		for i, fn := range leaf.Functions {
			h, err := bodyHash(fn)
			if err != nil {
				return errs.Wrap(errs.IO, err, "hashing function body for %q", fn.Name)
			}
			fn.Hash = h
			if canon, ok := canonical[h]; ok {
				leaf.Functions[i] = canon
				continue
			}
			canonical[h] = fn
		}
	}
	return nil
}

func bodyHash(fn *ir.FunctionRecord) (uint64, error) {
	hash, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, err
	}
	if _, err := hash.Write([]byte(fn.Body)); err != nil {
		return 0, err
	}
	return hash.Sum64(), nil
}

// UniqueFunctions returns every distinct function referenced in schedule
// order, in reverse-schedule emission order (spec §4.4 Step 11: "unique
// leaf functions emitted in reverse schedule order, so wrappers that call
// inner functions are defined after those inner functions").
func UniqueFunctions(schedule []*ir.Leaf) []*ir.FunctionRecord {
	seen := map[*ir.FunctionRecord]bool{}
	var out []*ir.FunctionRecord
	for i := len(schedule) - 1; i >= 0; i-- {
		fns := schedule[i].Functions
		// Within one leaf's own function list, a wrapper synthesized by
		// Steps 4/5 sits at index 0 and calls the inner stage functions
		// that follow it (spec §4.4 Step 4 "insert this wrapper at the
		// head of the leaf's function list") — walk that list in reverse
		// too so inner functions are still emitted before their wrapper.
		for j := len(fns) - 1; j >= 0; j-- {
			fn := fns[j]
			if fn == nil || seen[fn] {
				continue
			}
			seen[fn] = true
			out = append(out, fn)
		}
	}
	return out
}
