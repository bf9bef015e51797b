package insts

// Well-known register indices.
const (
	RegZero uint8 = 0
	RegAT   uint8 = 1
	RegV0   uint8 = 2
	RegA0   uint8 = 4
	RegGP   uint8 = 28
	RegSP   uint8 = 29
	RegFP   uint8 = 30
	RegRA   uint8 = 31
)

// NumGPRs is the number of general-purpose registers.
const NumGPRs = 32

var regNames = [NumGPRs]string{
	"zr", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

// RegName returns the ABI name of a GPR. Only the low 5 bits are used.
func RegName(reg uint8) string {
	return regNames[reg&31]
}

// RegIndex returns the index of the GPR with the given ABI name.
func RegIndex(name string) (uint8, bool) {
	for i, n := range regNames {
		if n == name {
			return uint8(i), true
		}
	}
	return 0, false
}
