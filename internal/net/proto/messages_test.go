package proto

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tank-arena/server/internal/sim"
)

func TestDecodeUpdateRotate(t *testing.T) {
	cmd, err := DecodeUpdate([]byte(`{"id":1,"action":"rotate","value":-5}`))
	require.NoError(t, err)
	assert.Equal(t, sim.Command{TankID: 1, Action: sim.ActionRotate, Rotate: -5}, cmd)
}

func TestDecodeUpdateMoveAndFire(t *testing.T) {
	cmd, err := DecodeUpdate([]byte(`{"id":1,"action":"move","value":"left"}`))
	require.NoError(t, err)
	assert.Equal(t, "left", cmd.Direction)

	cmd, err = DecodeUpdate([]byte(`{"id":1,"action":"fire"}`))
	require.NoError(t, err)
	assert.Equal(t, sim.ActionFire, cmd.Action)
}

func TestDecodeUpdateRejectsMalformedPayloads(t *testing.T) {
	payloads := []string{
		`{"id":1,"action":`,
		`{"id":1,"action":"rotate","value":"left"}`,
		`{"id":1,"action":"rotate"}`,
		`{"id":1,"action":"move","value":5}`,
		`{"id":1,"action":"move","value":"up"}`,
		`{"id":1,"action":"dance"}`,
	}
	for _, payload := range payloads {
		_, err := DecodeUpdate([]byte(payload))
		assert.Truef(t, errors.Is(err, sim.ErrInvalidCommand), "payload %s: %v", payload, err)
	}
}

func sampleSnapshot() sim.Snapshot {
	winner := 1
	skill := 0.7
	return sim.Snapshot{
		Tanks: []sim.TankSnapshot{
			{ID: 1, X: 100, Y: 100, Health: 100, MaxHealth: 100, Color: "green", Barrels: 1},
			{ID: 2, X: 600, Y: 400, Angle: 45, Health: 110, MaxHealth: 110, Color: "darkviolet", Barrels: 1, AISkill: &skill},
		},
		Projectiles: []sim.ProjectileSnapshot{
			{X: 10, Y: 20, Owner: 2, VelocityX: 15, Damage: 20, Color: "yellow", Timestamp: 12.5, Active: true},
		},
		Rewards: []sim.RewardSnapshot{
			{Type: "barrel", X: 300, Y: 300, Color: "purple", Radius: 15, Duration: 45, Stackable: true, SpawnTime: 11},
		},
		GameOver:     true,
		Winner:       &winner,
		Completed:    true,
		MapWidth:     800,
		MapHeight:    600,
		LastUpdate:   12.75,
		CurrentLevel: 5,
		SessionID:    "abc",
		Tick:         42,
	}
}

func TestSnapshotRoundTripsThroughMsgpack(t *testing.T) {
	original := sampleSnapshot()

	data, err := EncodeSnapshot(original, FormatMsgpack)
	require.NoError(t, err)
	decoded, err := DecodeSnapshot(data, FormatMsgpack)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestJSONSnapshotUsesClientFieldNames(t *testing.T) {
	data, err := EncodeSnapshot(sampleSnapshot(), FormatJSON)
	require.NoError(t, err)
	body := string(data)
	for _, key := range []string{
		`"gameActive":false`,
		`"mapWidth":800`,
		`"currentLevel":5`,
		`"velocity_x":15`,
		`"ai_skill":0.7`,
		`"spawnTime":11`,
		`"winner":1`,
	} {
		assert.Contains(t, body, key)
	}
	assert.NotContains(t, body, "powerupTime", "inactive boosts are omitted")
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, format)

	format, err = ParseFormat("MSGPACK")
	require.NoError(t, err)
	assert.True(t, format.Binary())

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestNewStatusCarriesError(t *testing.T) {
	assert.Equal(t, StatusResponse{Status: StatusSuccess}, NewStatus(StatusSuccess, nil))
	resp := NewStatus(StatusError, errors.New("boom"))
	assert.Equal(t, "boom", resp.Error)
}

func TestSnapshotSchemaNamesWireFields(t *testing.T) {
	schema := SnapshotSchema()
	require.NotNil(t, schema)
	data, err := json.Marshal(schema)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"currentLevel"`)
	assert.Contains(t, string(data), `"gameActive"`)
}
