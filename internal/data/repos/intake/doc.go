// Package intake holds table-level repos for intake conversations.
// Cross-table writes go through data/aggregates.ConversationAggregate.
package intake
