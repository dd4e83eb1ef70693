package main

import (
	"fmt"

	fecom "github.com/supernemo-dbd/fecom_go/pkg"
)

func printConfiguration(config fecom.Configuration, logger fecom.Logger) {
	logger.Info(fmt.Sprintf("Priority: %s", config.Priority), "config")
	logger.Info(fmt.Sprintf("Codec: %s", config.Codec), "config")
	logger.Info(fmt.Sprintf("Archive: %s", config.Archive), "config")
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Run ID: %s", config.RunID), "config")
	logger.Info(fmt.Sprintf("Env files: %v", config.EnvFiles), "config")
	logger.Info(fmt.Sprintf("Compression: %s", config.Compression), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Num workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Num events: %d", config.NumEvents), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
}
