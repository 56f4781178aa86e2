package client_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gastoscl/rendiciones/internal/client"
)

func TestClient(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Client Suite")
}

var _ = Describe("RUT validation", func() {
	Describe("ValidateRUT", func() {
		It("accepts a valid RUT with dots and dash", func() {
			Expect(client.ValidateRUT("12.345.678-5")).To(Succeed())
		})

		It("accepts a valid RUT without formatting", func() {
			Expect(client.ValidateRUT("123456785")).To(Succeed())
		})

		It("accepts a valid RUT with check digit K", func() {
			// 20.347.878 yields remainder 10 -> K
			Expect(client.ValidateRUT("20.347.878-K")).To(Succeed())
			Expect(client.ValidateRUT("20347878k")).To(Succeed())
		})

		It("rejects a wrong check digit", func() {
			err := client.ValidateRUT("12.345.678-9")
			Expect(err).To(HaveOccurred())
		})

		It("rejects garbage input", func() {
			Expect(client.ValidateRUT("not-a-rut")).To(HaveOccurred())
			Expect(client.ValidateRUT("")).To(HaveOccurred())
		})

		It("rejects a RUT that is too short", func() {
			Expect(client.ValidateRUT("12-4")).To(HaveOccurred())
		})
	})

	Describe("FormatRUT", func() {
		It("formats a bare RUT with dots and dash", func() {
			Expect(client.FormatRUT("123456785")).To(Equal("12.345.678-5"))
		})

		It("normalizes an already formatted RUT", func() {
			Expect(client.FormatRUT("12.345.678-5")).To(Equal("12.345.678-5"))
		})

		It("upcases the check digit", func() {
			Expect(client.FormatRUT("20347878k")).To(Equal("20.347.878-K"))
		})
	})

	Describe("CleanRUT", func() {
		It("strips dots and dashes and upcases", func() {
			Expect(client.CleanRUT("12.345.678-k")).To(Equal("12345678K"))
		})
	})
})
