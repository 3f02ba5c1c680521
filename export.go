package qnn

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

/*
The circuit listing is line oriented:

	qubits 4
	rx 0 1.5707963267948966
	ry 1 0.25
	cx 0 1

The header gives the register size; each further line is one gate as
mnemonic, qubit(s) and, for rotations, the angle in shortest round-trip
form, so import reproduces every angle bit for bit. On import, blank lines
and lines starting with # are skipped.
*/

// ExportCircuit writes the listing of c to w.
func ExportCircuit(w io.Writer, c *Circuit) error {
	bw := bufio.NewWriter(w)
	if err := writeCircuit(bw, c); err != nil {
		return err
	}
	return bw.Flush()
}

func writeCircuit(w io.Writer, c *Circuit) error {
	if _, err := fmt.Fprintf(w, "qubits %d\n", c.qubits); err != nil {
		return err
	}

	for _, g := range c.gates {
		if _, err := fmt.Fprintln(w, g.String()); err != nil {
			return err
		}
	}
	return nil
}

// ParseCircuit reads a listing from a string.
func ParseCircuit(listing string) (*Circuit, error) {
	return ImportCircuit(strings.NewReader(listing))
}

// ImportCircuit reconstructs a circuit from its listing.
func ImportCircuit(r io.Reader) (*Circuit, error) {
	scanner := bufio.NewScanner(r)

	qubits := -1
	var gates []Gate
	line := 0

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)

		if qubits < 0 {
			if fields[0] != "qubits" || len(fields) != 2 {
				return nil, invalid("listing", "line %d: expected \"qubits <n>\" header, got %q", line, text)
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, invalid("listing", "line %d: bad qubit count %q", line, fields[1])
			}
			qubits = n
			continue
		}

		g, err := parseGate(fields)
		if err != nil {
			return nil, invalid("listing", "line %d: %v", line, err)
		}
		gates = append(gates, g)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read circuit listing: %w", err)
	}

	if qubits < 0 {
		return nil, invalid("listing", "missing \"qubits <n>\" header")
	}

	return NewCircuit(qubits, gates...)
}

func parseGate(fields []string) (Gate, error) {
	switch fields[0] {
	case "rx", "ry":
		if len(fields) != 3 {
			return Gate{}, fmt.Errorf("%s takes a qubit and an angle", fields[0])
		}
		q, err := strconv.Atoi(fields[1])
		if err != nil {
			return Gate{}, fmt.Errorf("bad qubit %q", fields[1])
		}
		angle, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return Gate{}, fmt.Errorf("bad angle %q", fields[2])
		}
		if fields[0] == "rx" {
			return RX(q, angle), nil
		}
		return RY(q, angle), nil

	case "cx":
		if len(fields) != 3 {
			return Gate{}, fmt.Errorf("cx takes a control and a target")
		}
		c, err := strconv.Atoi(fields[1])
		if err != nil {
			return Gate{}, fmt.Errorf("bad control %q", fields[1])
		}
		t, err := strconv.Atoi(fields[2])
		if err != nil {
			return Gate{}, fmt.Errorf("bad target %q", fields[2])
		}
		return CNOT(c, t), nil

	default:
		return Gate{}, fmt.Errorf("unknown gate %q", fields[0])
	}
}
