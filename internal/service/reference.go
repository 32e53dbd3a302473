package service

import "fmt"

// Reference derives the human-readable application reference from the
// learner reference number. Deterministic: re-registration attempts for the
// same LRN always produce the same code.
func Reference(prefix, lrn string) string {
	padded := lrn
	for len(padded) < 6 {
		padded = "0" + padded
	}
	return fmt.Sprintf("%s-%s", prefix, padded)
}
