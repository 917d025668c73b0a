package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Hash : Returns the lowercase hex SHA-256 of the block's canonical encoding
func Hash(block *Block) string {
	hash := sha256.Sum256(CanonicalEncoding(block))
	return hex.EncodeToString(hash[:])
}

// CanonicalEncoding : Renders a block as compact JSON with object keys sorted
// at every level. HTML characters are left unescaped. Bytes that are not
// valid UTF-8 are written as \xNN so distinct strings never encode alike.
func CanonicalEncoding(block *Block) []byte {
	var buf bytes.Buffer

	buf.WriteString(`{"index":`)
	buf.WriteString(strconv.Itoa(block.Index))
	buf.WriteString(`,"previous_hash":`)
	writeString(&buf, block.PreviousHash)
	buf.WriteString(`,"proof":`)
	buf.WriteString(strconv.Itoa(block.Proof))
	buf.WriteString(`,"timestamp":`)
	writeString(&buf, block.Timestamp)
	buf.WriteString(`,"transactions":[`)
	for i, tx := range block.Transactions {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`{"from":`)
		writeString(&buf, tx.From)
		buf.WriteString(`,"medicine_name":`)
		writeString(&buf, tx.MedicineName)
		buf.WriteString(`,"quantity":`)
		buf.WriteString(strconv.Itoa(tx.Quantity))
		buf.WriteString(`,"to":`)
		writeString(&buf, tx.To)
		buf.WriteByte('}')
	}
	buf.WriteString(`]}`)

	return buf.Bytes()
}

// writeString quotes s the way encoding/json does for valid UTF-8 runs.
// JSON itself never emits \x, so the escape for stray bytes cannot collide.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for i := 0; i < len(s); {
		if r, size := utf8.DecodeRuneInString(s[i:]); r == utf8.RuneError && size == 1 {
			fmt.Fprintf(buf, `\x%02x`, s[i])
			i++
			continue
		}

		j := i
		for j < len(s) {
			r, size := utf8.DecodeRuneInString(s[j:])
			if r == utf8.RuneError && size == 1 {
				break
			}
			j += size
		}
		writeValidRun(buf, s[i:j])
		i = j
	}
	buf.WriteByte('"')
}

func writeValidRun(buf *bytes.Buffer, s string) {
	var quoted bytes.Buffer
	enc := json.NewEncoder(&quoted)
	enc.SetEscapeHTML(false)
	// a valid UTF-8 string always encodes
	_ = enc.Encode(s)
	out := bytes.TrimSuffix(quoted.Bytes(), []byte("\n"))
	buf.Write(out[1 : len(out)-1])
}
