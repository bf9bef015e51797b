package vars_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsdyn/vars"
)

var _ = Describe("Registry", func() {
	var (
		r  *vars.Registry
		pc uint64
	)

	BeforeEach(func() {
		pc = 0xffffffffbfc00000
		r = vars.NewRegistry()
		Expect(r.Add("model", vars.ReadOnlyString("5KE"))).To(Succeed())
		Expect(r.Add("pc", vars.NewUint64(&pc))).To(Succeed())
	})

	It("should keep names in registration order", func() {
		Expect(r.Names()).To(Equal([]string{"model", "pc"}))
	})

	It("should reject duplicates", func() {
		Expect(r.Add("pc", vars.NewUint64(&pc))).To(MatchError(vars.ErrDuplicateVariable))
	})

	It("should read bound values", func() {
		Expect(r.Get("pc")).To(Equal("0xffffffffbfc00000"))
		Expect(r.Get("model")).To(Equal("5KE"))
	})

	It("should fail on unknown names", func() {
		_, err := r.Get("nope")
		Expect(err).To(MatchError(vars.ErrUnknownVariable))
		Expect(r.Set("nope", "1")).To(MatchError(vars.ErrUnknownVariable))
	})

	It("should refuse to set read-only variables", func() {
		Expect(r.Set("model", "R4400")).To(MatchError(vars.ErrReadOnly))
	})

	DescribeTable("setting integers",
		func(value string, want uint64) {
			Expect(r.Set("pc", value)).To(Succeed())
			Expect(pc).To(Equal(want))
		},
		Entry("hex", "0x80001000", uint64(0x80001000)),
		Entry("decimal", "42", uint64(42)),
		Entry("negative", "-1", ^uint64(0)),
		Entry("padded", " 0x10 ", uint64(0x10)),
	)

	It("should reject garbage", func() {
		err := r.Set("pc", "zzz")
		Expect(err).To(MatchError(vars.ErrBadValue))
		Expect(err.Error()).To(ContainSubstring("setting pc"))
		Expect(pc).To(Equal(uint64(0xffffffffbfc00000)))
	})

	It("should look up variables", func() {
		v, ok := r.Lookup("pc")
		Expect(ok).To(BeTrue())
		Expect(v.String()).To(Equal("0xffffffffbfc00000"))
	})
})
