package goksql

// GoksqlVersion is the version of goksql
const GoksqlVersion = "0.3.0"
