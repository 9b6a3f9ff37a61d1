package variant

// iupacBases maps ambiguity codes to the bases they stand for.
var iupacBases = map[byte]string{
	'R': "AG",
	'Y': "CT",
	'S': "CG",
	'W': "AT",
	'K': "GT",
	'M': "AC",
	'B': "CGT",
	'D': "AGT",
	'H': "ACT",
	'V': "ACG",
	'N': "ACGT",
}

// expandIUPAC returns the concrete alleles for an ambiguity code, leaving
// out the reference base. Plain bases return nil.
func expandIUPAC(code byte, ref string) []string {
	bases, ok := iupacBases[code]
	if !ok {
		return nil
	}
	var out []string
	for i := 0; i < len(bases); i++ {
		if b := bases[i : i+1]; b != ref {
			out = append(out, b)
		}
	}
	return out
}

