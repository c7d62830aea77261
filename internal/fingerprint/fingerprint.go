// Package fingerprint produces the opaque tokens that name certificates:
// the fingerprint itself, the human-readable certificate code and the ledger
// transaction id.
package fingerprint

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Data holds the certificate fields folded into the fingerprint. All fields
// are required.
type Data struct {
	HolderName      string `json:"holder_name"`
	HolderEmail     string `json:"holder_email"`
	CourseName      string `json:"course_name"`
	InstitutionName string `json:"institution_name"`
	IssueDate       string `json:"issue_date"`
	IssuerID        string `json:"issuer_id"`
}

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func (d Data) validate() error {
	switch {
	case strings.TrimSpace(d.HolderName) == "":
		return errors.New("holder name is required")
	case strings.TrimSpace(d.HolderEmail) == "":
		return errors.New("holder email is required")
	case strings.TrimSpace(d.CourseName) == "":
		return errors.New("course name is required")
	case strings.TrimSpace(d.InstitutionName) == "":
		return errors.New("institution name is required")
	case strings.TrimSpace(d.IssueDate) == "":
		return errors.New("issue date is required")
	case strings.TrimSpace(d.IssuerID) == "":
		return errors.New("issuer id is required")
	}
	return nil
}

// Generate returns a 64-character lowercase hex token: the SHA-256 digest of
// the certificate fields serialized together with the current wall clock and
// a random nonce.
//
// The timestamp and nonce make the token unique per call, not a reproducible
// content digest: generating twice from identical data yields two different
// tokens. Verification therefore only ever compares a presented token against
// the stored one; it never recomputes a fingerprint from certificate fields.
func Generate(data Data) (string, error) {
	if err := data.validate(); err != nil {
		return "", err
	}

	nonce, err := randomBase36(12)
	if err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	payload, err := json.Marshal(struct {
		Data
		Timestamp int64  `json:"timestamp"`
		Nonce     string `json:"nonce"`
	}{
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
		Nonce:     nonce,
	})
	if err != nil {
		return "", fmt.Errorf("failed to serialize fingerprint payload: %w", err)
	}

	digest := sha256.Sum256(payload)
	return hex.EncodeToString(digest[:]), nil
}

// Valid reports whether token has the shape Generate produces. Presented
// tokens come from QR scanners and URL paths, so garbage is expected.
func Valid(token string) bool {
	return tokenPattern.MatchString(token)
}

// NewCertificateCode returns the human-readable certificate code, e.g.
// CERT-M4K8A1CZ-X7Q2B9.
func NewCertificateCode() (string, error) {
	random, err := randomBase36(6)
	if err != nil {
		return "", err
	}
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return strings.ToUpper(fmt.Sprintf("CERT-%s-%s", ts, random)), nil
}

// NewLedgerTxID returns the external-ledger transaction id recorded on a
// certificate. It is a random token in tx_<unix-ms>_<rand> form; nothing is
// written to any ledger.
func NewLedgerTxID() (string, error) {
	random, err := randomBase36(9)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("tx_%d_%s", time.Now().UnixMilli(), random), nil
}

// Truncate shortens a token for display: first and last n characters joined
// by an ellipsis.
func Truncate(token string, n int) string {
	if n <= 0 || len(token) <= n*2 {
		return token
	}
	return token[:n] + "..." + token[len(token)-n:]
}

func randomBase36(length int) (string, error) {
	max := big.NewInt(int64(len(base36Alphabet)))
	out := make([]byte, length)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = base36Alphabet[idx.Int64()]
	}
	return string(out), nil
}
