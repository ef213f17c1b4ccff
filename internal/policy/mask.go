package policy

// MaskChar replaces hidden phone characters.
const MaskChar = 'X'

// PhoneVisibleTail is the number of trailing phone characters left readable.
const PhoneVisibleTail = 4

// MaskPhone keeps the last PhoneVisibleTail characters and masks the rest.
// Values no longer than the visible tail are masked entirely. The result has
// the same length as the input, and masking a masked value changes nothing.
func MaskPhone(phone string) string {
	if phone == "" {
		return ""
	}
	r := []rune(phone)
	keep := len(r) - PhoneVisibleTail
	if keep <= 0 {
		keep = len(r)
	}
	for i := 0; i < keep; i++ {
		r[i] = MaskChar
	}
	return string(r)
}
