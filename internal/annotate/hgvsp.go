package annotate

import (
	"fmt"
	"strings"

	"github.com/inodb/vibe-eff/internal/genome"
)

// aaThree converts a single-letter amino acid code to its three-letter code.
// Returns "Xaa" for unknown amino acids.
func aaThree(aa byte) string {
	if three, ok := genome.AminoAcidSingleToThree[aa]; ok {
		return three
	}
	return "Xaa"
}

func aaThreeSeq(aas string) string {
	var sb strings.Builder
	for i := 0; i < len(aas); i++ {
		sb.WriteString(aaThree(aas[i]))
	}
	return sb.String()
}

// formatHGVSp formats the HGVS protein notation of a coding change.
// Returns "" when the change cannot be described, e.g. without sequence.
func formatHGVSp(cc *codonChange) string {
	e := cc.effect
	if e.CodonNum < 0 || cc.newCDS == "" {
		return ""
	}
	if e.Has(EffectStartLost) {
		return "p.Met1?"
	}

	switch e.Primary() {
	case EffectFrameShift:
		return hgvspFrameShift(cc)
	case EffectCodonInsertion, EffectCodonDeletion,
		EffectCodonChangePlusCodonInsertion, EffectCodonChangePlusCodonDeletion:
		return hgvspInFrame(cc)
	}
	return hgvspSubstitution(cc)
}

// hgvspSubstitution handles same-length changes over one or more codons.
func hgvspSubstitution(cc *codonChange) string {
	e := cc.effect
	old, alt := e.OldAA, e.NewAA
	if old == "" || len(old) != len(alt) {
		return ""
	}
	i, j := 0, len(old)-1
	for i < len(old) && old[i] == alt[i] {
		i++
	}
	if i == len(old) {
		if old[0] == '*' {
			return fmt.Sprintf("p.Ter%d=", e.CodonNum+1)
		}
		return fmt.Sprintf("p.%s%d=", aaThree(old[0]), e.CodonNum+1)
	}
	for old[j] == alt[j] {
		j--
	}
	pos := e.CodonNum + 1 + i
	if i < j {
		return fmt.Sprintf("p.%s%d_%s%ddelins%s",
			aaThree(old[i]), pos, aaThree(old[j]), e.CodonNum+1+j, aaThreeSeq(alt[i:j+1]))
	}

	switch {
	case alt[i] == '*':
		return fmt.Sprintf("p.%s%dTer", aaThree(old[i]), pos)
	case old[i] == '*':
		tail := cc.newCDS[(e.CodonNum+i)*3:] + cc.t.UTR3Sequence()
		return hgvspExtension(pos, cc.table.Translate(tail))
	}
	return fmt.Sprintf("p.%s%d%s", aaThree(old[i]), pos, aaThree(alt[i]))
}

// hgvspFrameShift names the first changed amino acid and the distance to
// the new stop codon.
func hgvspFrameShift(cc *codonChange) string {
	oldProt := cc.table.Translate(cc.cds)
	newProt := cc.table.Translate(cc.newCDS + cc.t.UTR3Sequence())
	i := cc.effect.CodonNum
	for i < len(oldProt) && i < len(newProt) && oldProt[i] == newProt[i] {
		i++
	}
	if i >= len(oldProt) {
		return ""
	}
	if i >= len(newProt) {
		return fmt.Sprintf("p.%s%dfs", aaThree(oldProt[i]), i+1)
	}
	if oldProt[i] == '*' {
		return hgvspExtension(i+1, newProt[i:])
	}
	if newProt[i] == '*' {
		return fmt.Sprintf("p.%s%dTer", aaThree(oldProt[i]), i+1)
	}
	if k := strings.IndexByte(newProt[i:], '*'); k >= 0 {
		return fmt.Sprintf("p.%s%d%sfsTer%d", aaThree(oldProt[i]), i+1, aaThree(newProt[i]), k+1)
	}
	return fmt.Sprintf("p.%s%d%sfsTer?", aaThree(oldProt[i]), i+1, aaThree(newProt[i]))
}

// hgvspExtension describes a lost stop codon at protein position pos.
// prot is the new translation starting at that position; the distance to
// its next stop gives ext*N, or ext*? when there is none.
func hgvspExtension(pos int, prot string) string {
	if k := strings.IndexByte(prot, '*'); k > 0 {
		return fmt.Sprintf("p.Ter%d%sext*%d", pos, aaThree(prot[0]), k)
	}
	return fmt.Sprintf("p.Ter%d%sext*?", pos, aaThree(prot[0]))
}

// hgvspInFrame compares the old and new proteins and describes the
// difference as a deletion, insertion, duplication or delins. Taking the
// longest common prefix places the change at its most C-terminal
// position.
func hgvspInFrame(cc *codonChange) string {
	old := cc.table.Translate(cc.cds)
	alt := cc.table.Translate(cc.newCDS)

	p := 0
	for p < len(old) && p < len(alt) && old[p] == alt[p] {
		p++
	}
	s := 0
	for s < len(old)-p && s < len(alt)-p && old[len(old)-1-s] == alt[len(alt)-1-s] {
		s++
	}
	del := old[p : len(old)-s]
	ins := alt[p : len(alt)-s]

	switch {
	case del == "" && ins == "":
		return ""
	case ins == "":
		if len(del) == 1 {
			return fmt.Sprintf("p.%s%ddel", aaThree(del[0]), p+1)
		}
		return fmt.Sprintf("p.%s%d_%s%ddel", aaThree(del[0]), p+1, aaThree(del[len(del)-1]), p+len(del))
	case del == "":
		n := len(ins)
		if p >= n && old[p-n:p] == ins {
			if n == 1 {
				return fmt.Sprintf("p.%s%ddup", aaThree(ins[0]), p)
			}
			return fmt.Sprintf("p.%s%d_%s%ddup", aaThree(ins[0]), p-n+1, aaThree(ins[n-1]), p)
		}
		if p == 0 || p >= len(old) {
			return ""
		}
		return fmt.Sprintf("p.%s%d_%s%dins%s", aaThree(old[p-1]), p, aaThree(old[p]), p+1, aaThreeSeq(ins))
	}
	if len(del) == 1 {
		return fmt.Sprintf("p.%s%ddelins%s", aaThree(del[0]), p+1, aaThreeSeq(ins))
	}
	return fmt.Sprintf("p.%s%d_%s%ddelins%s",
		aaThree(del[0]), p+1, aaThree(del[len(del)-1]), p+len(del), aaThreeSeq(ins))
}
