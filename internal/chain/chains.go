package chain

const (
	LocalChainID    uint64 = 31337
	GarnetChainID   uint64 = 17069
	RedstoneChainID uint64 = 690
)

var indexerURLs = map[uint64]string{
	LocalChainID:    "http://localhost:13690/api/sqlite-indexer",
	GarnetChainID:   "https://indexer.mud.garnetchain.com/q",
	RedstoneChainID: "https://indexer.mud.redstonechain.com/q",
}

// IndexerURL returns the public MUD indexer query endpoint for a known chain.
func IndexerURL(chainID uint64) (string, bool) {
	url, ok := indexerURLs[chainID]
	return url, ok
}
