package models

// Format selects how a competition is played.
type Format string

const (
	FormatPoolPlay      Format = "pool-play"
	FormatBracket       Format = "bracket"
	FormatPoolToBracket Format = "pool-to-bracket"
)

func (f Format) IsValid() bool {
	switch f {
	case FormatPoolPlay, FormatBracket, FormatPoolToBracket:
		return true
	}
	return false
}

// HasPools reports whether teams of this format are grouped into pools.
func (f Format) HasPools() bool {
	return f == FormatPoolPlay || f == FormatPoolToBracket
}

// HasBracket reports whether this format ends in an elimination bracket.
func (f Format) HasBracket() bool {
	return f == FormatBracket || f == FormatPoolToBracket
}
