package emu

// Segment windows that translate without a page table walk.
const (
	kseg01Start uint64 = 0xffffffff80000000
	kseg01End   uint64 = 0xffffffffc0000000 // exclusive
	kseg01Mask  uint64 = 0x1fffffff

	xkphysStart uint64 = 0xa800000000000000
	xkphysLast  uint64 = 0xa8000fffffffffff // inclusive
	xkphysMask  uint64 = 0xfffffffffff
)

// TranslateAddress maps a virtual address to a physical one. In 32-bit mode
// the low 32 bits of vaddr are sign-extended before matching. Only the
// kseg0/kseg1 window (29-bit physical) and the cached xkphys window (44-bit
// physical) are mapped; everything else is a miss and fault handling is up
// to the caller. There is no TLB.
func TranslateAddress(vaddr uint64, is32Bit bool) (paddr uint64, writable bool, ok bool) {
	if is32Bit {
		vaddr = uint64(int64(int32(vaddr)))
	}

	if vaddr >= kseg01Start && vaddr < kseg01End {
		return vaddr & kseg01Mask, true, true
	}

	if vaddr >= xkphysStart && vaddr <= xkphysLast {
		return vaddr & xkphysMask, true, true
	}

	return 0, false, false
}
