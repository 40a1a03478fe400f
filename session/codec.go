package session

import (
	"fmt"

	"github.com/goccy/go-json"
)

func encode(s *State) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("unable to encode session %s, %w", s.ID, err)
	}
	return b, nil
}

func decode(b []byte) (*State, error) {
	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("unable to decode session, %w", err)
	}
	return &s, nil
}
