// Package config loads the juris configuration file.
//
// The file is TOML with one table per component:
//
//	log_level = "info"
//
//	[ai]
//	embedding_model = "text-embedding-3-small"
//	synthesis_model = "llama-3.3-70b-versatile"
//
//	[storage]
//	backend = "badger"
//	path = "/var/lib/juris"
//
// Zero values are replaced by defaults, then API keys and the database URL
// may be supplied through the environment so they stay out of the file.
package config
