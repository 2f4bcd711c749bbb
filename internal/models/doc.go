// Package models defines the core domain models for chatbook.
//
// # Models
//
//   - Contact: a person the user exchanges messages with
//   - Message: one entry of a contact's chat history
//
// Both are persisted as JSON arrays in a key-value store, so the JSON
// field names below are the stored format and must stay stable:
//
//	my_contacts_list  -> []Contact
//	chat_<contactId>  -> []Message
//
// # Design Principles
//
// 1. **Whole-list persistence**: a contact list or a chat history is always
// read and written as one value
// 2. **No pointers between models**: Message refers to its Contact by ID
// 3. **Insertion order is display order**: histories are never re-sorted by
// timestamp
package models
