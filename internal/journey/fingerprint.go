package journey

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
)

// canonicalJSON renders v with sorted keys and no incidental whitespace —
// encoding/json already sorts map[string]any keys and emits compact
// separators, matching _examples/original_source/src/jmaps/journey/jmalc.py's
// json.dumps(..., sort_keys=True, separators=(",", ":")).
func canonicalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// fingerprint hashes envSQL's canonical JSON form into the hex digest used
// as both the cache lookup key's basis and the on-disk file path (spec.md
// §4.7.4, §6).
func fingerprint(envSQL map[string]any) (string, error) {
	s, err := canonicalJSON(envSQL)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:]), nil
}

// idempotentResultID derives a stable result row id from (path, version,
// environment) so repeated saves of the same fingerprint land on the same
// row via UpsertResult's ON CONFLICT, rather than accumulating duplicates.
func idempotentResultID(pathName string, version int, environment string) string {
	sum := sha256.Sum256([]byte(pathName + "\x00" + strconv.Itoa(version) + "\x00" + environment))
	return hex.EncodeToString(sum[:])
}
