/*
Package goksql runs pull queries against a KSQL engine over its REST API and returns the rows as a
JSON envelope.

# Connection

A Config is built from a DSN with ParseDSN, or loaded from a named entry of the TOML connection
file with LoadNamedConnectionConfig. The DSN has the form

	[ksql://][user[:password]@]host[:port][/path][?param1=value1&paramN=valueN]

Parameters prefixed with "ksql." are sent as streams properties with every statement. Pull queries
posted to /query always read from the earliest offset.

# Executing a query

NewExecutor returns an Executor bound to one engine. Executor.Execute handles a Query in four steps:

  - describe: with MetadataRetrieved set, the Source is described through /ksql and the statement
    is rewritten to project every column of the source, in the described order.
  - resolve: the query text is handed to the compiler, which yields the output column names.
  - stream: the statement is posted to /query and the response rows are decoded one at a time.
  - project: each row is paired with the resolved column names.

The result is written to the supplied writer in one write:

	{"metadata": {"ID": "BIGINT", "NAME": "STRING"}, "data": [{"ID": 1, "NAME": "a"}]}

The "metadata" key is present only when metadata was retrieved. Keys in each row follow the column
order of the query. A column selected more than once appears once, holding its last value.

Failures are returned as *KsqlError. Its Kind tells compilation failures, transport failures,
schema failures and malformed engine responses apart.

# Output formats and export

WithOutputFormat(FormatArrow) returns an Executor that writes the rows as an Arrow IPC stream,
with the metadata attached to the schema. ExecuteAndExport writes the encoded result to a local
file, S3, GCS or Azure Blob Storage location instead of a writer.
*/
package goksql
