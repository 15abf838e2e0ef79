package arbiter

import "github.com/groupshard/groupshard/pkg/types"

// permittedTransitions is the lifecycle's arrow set:
//
//	Registered -> Preparing -> Migrating -> Syncing -> Ready -> Normal
//	Normal -> PreparingOffline -> Offline
//
// plus a failure arrow to Failed from every state from Preparing through
// PreparingOffline (Registered has none). Any transition requested outside this table is rejected as
// InvalidTransition; Failed is terminal until the entry is removed.
var permittedTransitions = map[types.ShardState]map[types.ShardState]bool{
	types.StateRegistered: {
		types.StatePreparing: true,
	},
	types.StatePreparing: {
		types.StateMigrating: true,
		types.StateFailed:    true,
	},
	types.StateMigrating: {
		types.StateSyncing: true,
		types.StateFailed:  true,
	},
	types.StateSyncing: {
		types.StateReady:  true,
		types.StateFailed: true,
	},
	types.StateReady: {
		types.StateNormal: true,
		types.StateFailed: true,
	},
	types.StateNormal: {
		types.StatePreparingOffline: true,
		types.StateFailed:           true,
	},
	types.StatePreparingOffline: {
		types.StateOffline: true,
		types.StateFailed:  true,
	},
	types.StateOffline: {},
	types.StateFailed:  {},
}

// isPermittedTransition reports whether from -> to is one of the arrows in
// the state machine above.
func isPermittedTransition(from, to types.ShardState) bool {
	return permittedTransitions[from][to]
}
