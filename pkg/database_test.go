package fecom

import (
	"path/filepath"
	"testing"

	sqlx "github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const channelMappingSchema = `
CREATE TABLE ChannelMapping (
	GeomType INTEGER NOT NULL,
	Side     INTEGER NOT NULL DEFAULT 0,
	Wall     INTEGER NOT NULL DEFAULT 0,
	Layer    INTEGER NOT NULL DEFAULT 0,
	` + "`Row`" + `    INTEGER NOT NULL DEFAULT 0,
	Col      INTEGER NOT NULL DEFAULT 0,
	Rack     INTEGER NOT NULL,
	Crate    INTEGER NOT NULL,
	Board    INTEGER NOT NULL,
	Channel  INTEGER NOT NULL,
	MinRun   INTEGER NOT NULL,
	MaxRun   INTEGER NOT NULL
)`

func newChannelMappingDB(t *testing.T, entries []ChannelMappingEntry) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "mapping.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(channelMappingSchema)
	require.NoError(t, err)
	for _, e := range entries {
		_, err := db.Exec(`INSERT INTO ChannelMapping
			(GeomType, Side, Wall, Layer, `+"`Row`"+`, Col, Rack, Crate, Board, Channel, MinRun, MaxRun)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			int(e.Type), e.Side, e.Wall, e.Layer, e.Row, e.Column,
			e.Rack, e.Crate, e.Board, e.Channel, e.MinRun, e.MaxRun)
		require.NoError(t, err)
	}
	return db
}

func mappingEntry(gid GeomID, eid ElectronicID, minRun, maxRun int) ChannelMappingEntry {
	return ChannelMappingEntry{GeomID: gid, ElectronicID: eid, MinRun: minRun, MaxRun: maxRun}
}

func TestLoadChannelMapping(t *testing.T) {
	db := newChannelMappingDB(t, []ChannelMappingEntry{
		mappingEntry(GeigerCell(0, 0, 56), ElectronicID{Rack: 5, Crate: 1, Board: 9, Channel: 0}, 0, 1000),
		mappingEntry(GeigerCell(1, 8, 57), ElectronicID{Rack: 5, Crate: 1, Board: 11, Channel: 17}, 0, 1000),
		// superseded after run 100
		mappingEntry(GeigerCell(0, 0, 0), ElectronicID{Rack: 5, Crate: 0, Board: 1, Channel: 0}, 0, 100),
		mappingEntry(GeigerCell(0, 0, 0), ElectronicID{Rack: 5, Crate: 0, Board: 0, Channel: 0}, 101, 1000),
		mappingEntry(MainCalo(1, 12, 5), ElectronicID{Rack: 3, Crate: 1, Board: 13, Channel: 5}, 0, 1000),
	})

	cm, err := LoadChannelMapping(db, SubsystemTracker, 500, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, cm.Len())
	assert.Equal(t, ElectronicID{Rack: 5, Crate: 0, Board: 0, Channel: 0}, cm.ToElectronicID[GeigerCell(0, 0, 0)])
	assert.Equal(t, GeigerCell(1, 8, 57), cm.ToGeomID[ElectronicID{Rack: 5, Crate: 1, Board: 11, Channel: 17}])
	assert.NoError(t, ValidateChannelMap(newTestMapper(), cm))

	old, err := LoadChannelMapping(db, SubsystemTracker, 50, Options{})
	require.NoError(t, err)
	err = ValidateChannelMap(newTestMapper(), old)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stored [rack=5 crate=0 board=1 channel=0]")

	calo, err := LoadChannelMapping(db, SubsystemCalorimeter, 500, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, calo.Len())
	assert.NoError(t, ValidateChannelMap(newTestMapper(), calo))
}

func TestLoadChannelMappingRejectsAliasing(t *testing.T) {
	db := newChannelMappingDB(t, []ChannelMappingEntry{
		mappingEntry(GeigerCell(0, 0, 0), ElectronicID{Rack: 5, Crate: 0, Board: 0, Channel: 0}, 0, 10),
		mappingEntry(GeigerCell(0, 0, 1), ElectronicID{Rack: 5, Crate: 0, Board: 0, Channel: 0}, 0, 10),
	})
	_, err := LoadChannelMapping(db, SubsystemTracker, 5, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run 5")
}

func TestLoadChannelMappingMissingTable(t *testing.T) {
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer db.Close()
	_, err = LoadChannelMapping(db, SubsystemTrigger, 1, Options{})
	assert.ErrorContains(t, err, "error querying database")
}
