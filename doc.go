package resilient

// Package resilient provides:
//
// - Decoding of tree-shaped documents that survives field- and element-level failures
// - Resilient field wrappers (Optional, Array, Map, Enum and their optional variants) that substitute fallbacks and record an Outcome
// - Per-session error aggregation by document path via ErrorReporter and Digest
// - Structural enforcement (duplicate keys, depth, size) over JSON, YAML and MessagePack token sources
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Place token drivers under source/ and the CLI under cmd/resilient.
// - Malformed documents still fail as a whole with Issues; only shape and type errors inside a well-formed document are recovered.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  func (p *Pet) DecodeResilient(d *resilient.Decoder) error {
//      obj, err := d.Object()
//      if err != nil {
//          return err
//      }
//      name, err := resilient.Required(obj, "name", resilient.String)
//      if err != nil {
//          return err
//      }
//      p.Name = name.Value
//      p.Tags = resilient.Array(obj, "tags", resilient.String)
//      p.Kind, _ = resilient.Enum(obj, "kind", kindSpec.WithFallback(KindUnknown))
//      return nil
//  }
//
//  sess := resilient.NewSession()
//  rep := sess.EnableErrorReporting()
//  err := sess.Decode(ctx, resilient.JSONBytes(data), &pet)
//  if digest := rep.Flush(); digest != nil {
//      fmt.Print(digest)
//  }
//
