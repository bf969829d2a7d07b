/*
Package server provides the HTTP interface to dvedit density volumes.  Volumes are
declared in the TOML configuration and held in memory; a visualizer reads samples
through the web API while an editing tool posts point and box edits.

Every successful edit bumps the volume's version, which keys the sample payload cache,
is pushed to websocket subscribers, and is logged to kafka when servers are configured.
*/
package server
