// Package neo4jstore runs statements against a Neo4j database over Bolt.
//
// Store implements engine.Session. Each Execute call is one auto-committed
// query whose records are read eagerly, so Result.Single sees every record
// the server returned:
//
//	s, err := neo4jstore.Open(ctx, neo4jstore.Config{
//		URI:      "neo4j://localhost:7687",
//		Username: "neo4j",
//		Password: password,
//	})
//	if err != nil {
//		return err
//	}
//	defer s.Close(ctx)
//
//	res, err := engine.Run(ctx, s, st)
package neo4jstore
