package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainPlan    = "nlq/plan/v1"
	DomainBinding = "nlq/binding/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PlanID computes the content-addressed ID of a query plan.
// Pattern order is significant and is part of the identity; bindings are
// keyed by placeholder so their declaration order is not.
func PlanID(patterns []TriplePattern, bindings []Binding) (string, error) {
	pats := make([]any, len(patterns))
	for i, p := range patterns {
		pats[i] = string(p)
	}

	binds := make(map[string]any, len(bindings))
	for _, b := range bindings {
		binds[b.Placeholder] = BindingObject(b)
	}

	canonical, err := MarshalCanonical(map[string]any{
		"patterns":   pats,
		"bindings":   binds,
		"ir_version": IRVersion,
	})
	if err != nil {
		return "", fmt.Errorf("PlanID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPlan, canonical), nil
}

// BindingHash computes a stable identity for a single binding.
func BindingHash(b Binding) (string, error) {
	canonical, err := MarshalCanonical(BindingObject(b))
	if err != nil {
		return "", fmt.Errorf("BindingHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainBinding, canonical), nil
}

// BindingObject converts a binding to its canonical map form.
func BindingObject(b Binding) map[string]any {
	return map[string]any{
		"kind":        string(b.Kind),
		"placeholder": b.Placeholder,
		"term":        b.Term,
	}
}
