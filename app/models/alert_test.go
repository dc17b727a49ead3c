package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlertIsOpen(t *testing.T) {
	assert.True(t, (&Alert{Status: AlertStatusActive}).IsOpen())
	assert.False(t, (&Alert{Status: AlertStatusHit}).IsOpen())
	assert.False(t, (&Alert{Status: AlertStatusStopped}).IsOpen())
	assert.False(t, (&Alert{Status: AlertStatusExpired}).IsOpen())
}
