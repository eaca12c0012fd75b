package config

// SecretString keeps accidental logging or printing of sensitive configuration values at bay.
// Actual value is only accessible via explicit call.
type SecretString struct {
	value string
}

func NewSecretString(value string) SecretString {
	return SecretString{value: value}
}

func (s SecretString) String() string {
	if len(s.value) == 0 {
		return ""
	}
	return "******"
}

func (s SecretString) GoString() string {
	return s.String()
}

func (s SecretString) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SecretString) UnmarshalText(text []byte) error {
	s.value = string(text)
	return nil
}

// Value returns the actual secret.
func (s SecretString) Value() string {
	return s.value
}

// Empty reports if there is anything to hide.
func (s SecretString) Empty() bool {
	return len(s.value) == 0
}
