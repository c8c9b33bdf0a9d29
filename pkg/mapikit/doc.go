// Package mapikit wraps the resources of a messaging provider in typed,
// lifecycle-checked handles.
//
// Every provider resource is owned by a Handle. A handle is live until
// Release is called; afterwards every call fails with types.ErrReleased
// without reaching the provider. Wrappers built on Handle add the behavior
// of each resource kind:
//
//   - Prop exposes a property bag as get, set, delete and contains over
//     property tags, moving values too large for in-line transfer through a
//     property stream.
//   - Table turns the provider's batched row fetch into a lazy full scan
//     and a bookmark-driven search over a restriction.
//   - Session, MsgStore, Folder, Message, ProfAdmin and MsgServiceAdmin add
//     the orchestration each kind needs.
//
// Provider failures are annotated before they reach the caller: the
// symbolic name of the status code is filled in and, where the failing
// resource can report one, the extended error is attached.
//
// A Client binds a provider to a Registry, which maps the runtime kind of a
// provider resource to the wrapper constructed for it.
package mapikit
