// Package intents reads intent documents and turns each intent into
// stored template rows.
//
// A document has the shape of one file of the Home Assistant intents
// repository:
//
//	language: de
//	expansion_rules:
//	  licht: "[das] Licht"
//	lists:
//	  brightness:
//	    range: {from: 0, to: 100}
//	intents:
//	  HassTurnOn:
//	    data:
//	      - sentences:
//	          - "schalte <licht> (an|ein)"
//	        requires_context:
//	          domain: light
//
// The Extractor builds one unit per intent, derives its service name and
// context filter, and expands it through an orchestrator session.
package intents
