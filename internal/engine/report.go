package engine

import (
	"crypto/sha256"
	"encoding/hex"

	"disassembler/internal/decoder"
	"disassembler/internal/format"
	"disassembler/internal/version"
)

// Report is the machine readable form of a disassembly, used for JSON output.
type Report struct {
	Version      string       `json:"version"`
	Format       int          `json:"format"`
	Digest       string       `json:"digest"`
	Policy       string       `json:"policy"`
	Size         int          `json:"size"`
	Instructions []ReportLine `json:"instructions"`
}

// ReportLine is one instruction of a Report.
type ReportLine struct {
	Offset string `json:"offset"`
	Bytes  string `json:"bytes"`
	Op     string `json:"op"`
	Text   string `json:"text"`
}

// NewReport disassembles code into a Report.
func NewReport(code []byte, policy decoder.Policy) (*Report, error) {
	stream, err := Listing(code, policy)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(code)
	r := &Report{
		Version:      Version(),
		Format:       version.FormatVersion,
		Digest:       hex.EncodeToString(sum[:]),
		Policy:       policy.String(),
		Size:         len(code),
		Instructions: make([]ReportLine, 0, len(stream)),
	}
	for _, in := range stream {
		r.Instructions = append(r.Instructions, ReportLine{
			Offset: format.Address(in.Offset),
			Bytes:  hex.EncodeToString(in.Raw),
			Op:     in.Op,
			Text:   in.Text,
		})
	}
	return r, nil
}
