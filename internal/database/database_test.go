package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaCreatesEveryTable(t *testing.T) {
	for _, table := range []string{"users", "clients", "candidates", "applications", "resume_jobs"} {
		t.Run(table, func(t *testing.T) {
			assert.Contains(t, Schema, "CREATE TABLE IF NOT EXISTS "+table+" (")
		})
	}
}

func TestSchemaIsRerunnable(t *testing.T) {
	for _, line := range strings.Split(Schema, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "CREATE ") {
			assert.Contains(t, line, "IF NOT EXISTS", line)
		}
	}
}
