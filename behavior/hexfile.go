package behavior

import (
	"bufio"
	"fmt"
	"math/big"
	"os"
	"strings"
)

// LoadHexFile fills the model from a $readmemh style file: whitespace
// separated hex words, optional @addr markers, // and /* */ comments.
func (m *Model) LoadHexFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load hex file: %w", err)
	}
	defer f.Close()

	var (
		addr      uint64
		inComment bool
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := stripComments(scanner.Text(), &inComment)

		for _, tok := range strings.Fields(line) {
			if strings.HasPrefix(tok, "@") {
				if _, err := fmt.Sscanf(tok, "@%x", &addr); err != nil {
					return fmt.Errorf("bad address marker %q", tok)
				}

				continue
			}

			if err := m.writeHexWord(addr, tok); err != nil {
				return err
			}

			addr++
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("load hex file: %w", err)
	}

	return nil
}

func (m *Model) writeHexWord(addr uint64, tok string) error {
	val, ok := new(big.Int).SetString(strings.ReplaceAll(tok, "_", ""), 16)
	if !ok {
		return fmt.Errorf("bad hex word %q", tok)
	}

	if val.BitLen() > m.plan.Bits {
		return fmt.Errorf("hex word %q exceeds data width %d", tok, m.plan.Bits)
	}

	data := make([]byte, m.WordBytes())
	val.FillBytes(data)
	reverse(data)

	return m.Write(addr, data, nil)
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// stripComments drops // line comments and tracks /* */ block comments
// across lines.
func stripComments(line string, inComment *bool) string {
	var out strings.Builder

	for {
		if *inComment {
			end := strings.Index(line, "*/")
			if end < 0 {
				return out.String()
			}

			*inComment = false
			line = line[end+2:]

			continue
		}

		li := strings.Index(line, "//")
		bi := strings.Index(line, "/*")

		if li >= 0 && (bi < 0 || li < bi) {
			out.WriteString(line[:li])
			return out.String()
		}

		if bi >= 0 {
			out.WriteString(line[:bi])
			out.WriteByte(' ')
			*inComment = true
			line = line[bi+2:]

			continue
		}

		out.WriteString(line)

		return out.String()
	}
}
