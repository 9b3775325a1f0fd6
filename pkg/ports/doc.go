/*
Package ports defines the driven ports (interfaces) for the writ engine.

These interfaces decouple the wizard core from external implementations, allowing
the engine to work with various storage backends, bundle sources, geographic data
sets, contact sinks and document writers.

# Key Interfaces

  - BundleLoader: Retrieves wizard Definitions (embedded files, Loam directories).
  - GeoProvider: Read-only country and subdivision lookups.
  - ContactSink: Persists the contact captured before generation.
  - DocumentWriter: Turns a composed Document into a downloadable file.
  - StateStore: Persists and loads session State.
  - DistributedLocker: Provides distributed locking for concurrent session access.
*/
package ports
