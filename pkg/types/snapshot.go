package types

// state snapshot:
//   code: string
//   phase: "lobby" | "design" | "demo" | "round1" | "reveal1" |
//          "interstitial" | "round2" | "finalReveal" | "summary"
//   players: { [playerId]: {id, name, teamId, role, connected, designGrid?} }
//   teams: { [teamId]: {id, name, members, grid, round1Grid?, round1Score?,
//                       round2Score?, designGrid?, target?, aiLog?} }
//   teamOrder: string[] // creation order
//   currentTarget?: Grid // only during rounds and reveals
//   round: 1 | 2
//   timerEnd?: string // RFC3339, only during rounds
//   hostConnected: boolean
//   revealIndex: number
//
// Grid: Block[6][6][4] indexed [row][col][height]
