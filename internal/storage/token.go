package storage

import "time"

// Token is on-chain ERC-20 metadata cached between runs.
type Token struct {
	ChainID   int64  `gorm:"primaryKey;autoIncrement:false;"`
	Address   string `gorm:"primaryKey;size:42;"`
	Symbol    string
	Name      string
	Decimals  uint8
	FetchedAt time.Time
}
