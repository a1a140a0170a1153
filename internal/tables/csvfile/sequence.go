package csvfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// The high-water mark of each table lives next to it in "<table>.seq". It is
// always maintained; only the monotonic id policy reads it.

func (s *Store) sequencePath(table string) string {
	return s.path(strings.TrimSuffix(table, ".csv") + ".seq")
}

func (s *Store) readSequence(table string) (int64, error) {
	b, err := os.ReadFile(s.sequencePath(table))
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s sequence: %w", table, err)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, nil
	}
	return v, nil
}

func (s *Store) bumpSequence(table string, id int64) error {
	cur, err := s.readSequence(table)
	if err != nil {
		return err
	}
	if id <= cur {
		return nil
	}
	if err := os.WriteFile(s.sequencePath(table), []byte(strconv.FormatInt(id, 10)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s sequence: %w", table, err)
	}
	return nil
}

func (s *Store) nextID(table string, existing []int64) (int64, error) {
	hw, err := s.readSequence(table)
	if err != nil {
		return 0, err
	}
	return s.policy.NextID(existing, hw), nil
}
