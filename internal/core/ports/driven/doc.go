// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Connector: Fetches pages from a Notion workspace
//   - ConnectorFactory: Creates connectors from source configuration
//   - Normaliser: Transforms raw documents into domain documents
//   - NormaliserRegistry: Selects appropriate normaliser
//   - PostProcessor: Chunks, analyses and tags documents
//   - DocumentStore: Document, chunk and tag persistence
//   - SourceStore: Source configuration persistence
//   - SyncStateStore: Sync progress persistence
//   - CredentialsStore: Integration token and OAuth persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil and the application degrades gracefully:
//
//   - LLMService: Generated summaries and tag classification.
//   - PromptStore: User-editable prompt templates for the LLMService.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
