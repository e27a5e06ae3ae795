package types

// Client -> Server
// join:
//   name: string
//   isHost?: boolean
//   reconnectToken?: string
//
// placeBlock:
//   row: number
//   col: number
//   height?: number
//   block: "wall" | "floor" | "roof" | "window" | "door" | "plant" |
//          "table" | "metal" | "concrete" | "barrel" | "pipe" | "air" | "empty"
//
// chat:
//   text: string
//
// aiChat (forwarded to the external collaborator, answered later via
// the /room/{code} bridge callback):
//   text: string
//
// hostAction:
//   action: "startRound" | "pause" | "resume" | "skipToReveal" |
//           "nextReveal" | "prevReveal" | "endGame" | "startDemo" |
//           "endDemo" | "startDesign" | "endDesign" | "kickPlayer"
//   targetPlayerId?: string // kickPlayer only
//
// setTeamName:
//   name: string
//
// leaveGame: {}

// Server -> Client
// state:            { state } // full room snapshot
// gridUpdate:       { teamId, row, col, height, block }
// designGridUpdate: { teamId, playerId, row, col, height, block }
// chat:             { teamId, senderId, senderName, text, isAI? }
// aiBuilding:       { teamId, actions: [{row, col, height, block}] }
// timer:            { timerEnd } // unix millis, absent when cleared
// phaseChange:      { phase }
// reveal:           { revealIndex } // cursor into teamOrder during reveals
// error:            { message }
// playerJoined:     { player, reconnectToken? } // token only to the joiner
// reconnected:      { player, reconnectToken }
// scores:           { round, scores: { [teamId]: {correct, total, percentage, cells} } }
// kicked:           { message }
