package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextProducesPlainMessage(t *testing.T) {
	m := Text("hello")
	assert.Equal(t, "hello", m.Text)
	assert.Empty(t, m.Color)
}

func TestColoredSetsColorField(t *testing.T) {
	m := Colored("warning", "red")
	assert.Equal(t, "warning", m.Text)
	assert.Equal(t, "red", m.Color)
}

func TestDisconnectIsAlwaysRed(t *testing.T) {
	m := Disconnect("you have been kicked")
	assert.Equal(t, "you have been kicked", m.Text)
	assert.Equal(t, "red", m.Color)
}

func TestStringIsValidJSON(t *testing.T) {
	m := Message{Text: "root", Extra: []Message{Colored("child", "gray")}}
	s := m.String()

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &parsed))
	assert.Equal(t, "root", parsed["text"])
}
