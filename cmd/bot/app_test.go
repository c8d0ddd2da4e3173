package main

import (
	"testing"

	"github.com/gorilla/mux"
	"github.com/lupine-bot/lupine/pkg/logging"
	"github.com/stretchr/testify/require"
)

func TestUnregisterSlashCommandsBeforeRegistration(t *testing.T) {
	// Setup logger
	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")

	// A shutdown before any command was registered has nothing to delete
	// and must not touch the session.
	a := NewApp(l, mux.NewRouter())
	require.NoError(t, a.unregisterSlashCommands())
}
