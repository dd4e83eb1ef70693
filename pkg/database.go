package fecom

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

// ChannelMappingEntry is one row of the ChannelMapping table.
type ChannelMappingEntry struct {
	GeomID
	ElectronicID
	MinRun int `db:"MinRun"`
	MaxRun int `db:"MaxRun"`
}

// LoadChannelMapping reads the channels of subsystem valid for runNumber.
func LoadChannelMapping(db *sqlx.DB, subsystem Subsystem, runNumber int, opts Options) (ChannelMap, error) {
	query := `SELECT GeomType, Side, Wall, Layer, ` + "`Row`" + `, Col, Rack, Crate, Board, Channel, MinRun, MaxRun
		FROM ChannelMapping WHERE MinRun <= ? AND MaxRun >= ? ORDER BY Rack, Crate, Board, Channel`
	opts.logf(PrioInformation, "database", "reading %s channel mapping for run %d", subsystem, runNumber)
	opts.logf(PrioDebug, "database", "query: %s", query)

	rows, err := db.Queryx(query, runNumber, runNumber)
	if err != nil {
		return ChannelMap{}, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	cm := NewChannelMap(subsystem)
	for rows.Next() {
		var entry ChannelMappingEntry
		if err := rows.StructScan(&entry); err != nil {
			return ChannelMap{}, fmt.Errorf("error scanning DB row: %w", err)
		}
		if entry.Type.Subsystem() != subsystem {
			continue
		}
		if err := cm.Add(entry.GeomID, entry.ElectronicID); err != nil {
			return ChannelMap{}, fmt.Errorf("run %d: %w", runNumber, err)
		}
	}
	if err := rows.Err(); err != nil {
		return ChannelMap{}, fmt.Errorf("error reading DB rows: %w", err)
	}
	opts.logf(PrioInformation, "database", "%d %s channels read from DB", cm.Len(), subsystem)
	return cm, nil
}
