package auth

import "fmt"

type Tokens struct {
	Private string
	Feed    string
}

func (t Tokens) VerifyPrivate(candidate string) bool {
	return Verify(candidate, t.Private)
}

func (t Tokens) VerifyFeed(candidate string) bool {
	return Verify(candidate, t.Feed)
}

func (t Tokens) Validate() error {
	if t.Private == "" {
		return fmt.Errorf("private token is not set")
	}
	if t.Feed == "" {
		return fmt.Errorf("feed token is not set")
	}
	if len(t.Private) < MinTokenLength {
		return fmt.Errorf("private token is too short (minimum %d characters)", MinTokenLength)
	}
	if len(t.Feed) < MinTokenLength {
		return fmt.Errorf("feed token is too short (minimum %d characters)", MinTokenLength)
	}
	return nil
}
