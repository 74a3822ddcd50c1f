/*
Package ports defines the driven ports (interfaces) of the formflow engine.

These interfaces decouple the flow logic from external implementations, allowing
the engine to read schemas and track participants on various backends.

# Key Interfaces

  - SchemaLoader: resolves a form identifier to its Form (memory, blob, SQLite).
  - SchemaRepository: a SchemaLoader that can also save, delete and list forms.
  - KVStore: string key-value storage with expiry (memory, Redis).
  - DistributedLocker: optional per-participant mutual exclusion across replicas.
  - FlowEngine: the driving port used by the HTTP and MCP adapters.
*/
package ports
