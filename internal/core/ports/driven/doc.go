// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - PageExtractor: Extracts page text from one document format
//   - PageExtractorRegistry: Selects the extractor for a file
//   - IndexStore: Persists and loads the index snapshot
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, retrieval and routing still work.
//   - RequestLogger: Append-only request log. Without it, records are dropped.
//   - ConversationStore: Chat history. Without it, every question stands alone.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
