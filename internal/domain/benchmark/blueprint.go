package benchmark

import (
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
)

// Blueprint lists qualification tasks per benchmark name and category.
type Blueprint map[string]map[category.Category][]string

// Names returns benchmark names present in the blueprint, in benchmark display order.
func (b Blueprint) Names() []string {
	var out []string
	for _, p := range profiles {
		if _, ok := b[p.Name]; ok {
			out = append(out, p.Name)
		}
	}
	return out
}

// DefaultBlueprint returns the built-in qualification text.
func DefaultBlueprint() Blueprint {
	return Blueprint{
		"Satoshi": {
			category.Cryptography: {
				"Design novel cryptographic primitives (SHA-256 double hash, merkle trees)",
				"Implement ECDSA signature verification from scratch",
				"Create secure key generation and wallet formats",
				"Design proof-of-work consensus mechanism",
				"Understand cryptographic hash functions and their security properties",
			},
			category.DistributedSystems: {
				"Design peer-to-peer network protocol with gossip propagation",
				"Implement distributed consensus without central authority",
				"Handle network partitions and Byzantine fault tolerance",
				"Design efficient block and transaction propagation",
				"Create decentralized timestamp server architecture",
			},
			category.Economics: {
				"Design deflationary monetary policy with predictable issuance",
				"Model network effects and adoption incentives",
				"Create fee market mechanisms for transaction prioritization",
				"Understand Austrian economics and sound money principles",
				"Design economic incentives for network security",
			},
			category.Coding: {
				"Implement complete cryptocurrency protocol from scratch",
				"Write production-quality C++ with memory safety",
				"Design modular, extensible software architecture",
				"Create comprehensive test suites and validation",
				"Optimize for performance and resource efficiency",
			},
			category.Writing: {
				"Author foundational whitepaper explaining novel concepts",
				"Write clear, concise technical documentation",
				"Communicate complex ideas to diverse audiences",
				"Create compelling vision for decentralized future",
				"Document design decisions and trade-offs",
			},
			category.Community: {
				"Bootstrap initial community of developers and users",
				"Maintain pseudonymous identity while building trust",
				"Respond to technical questions and concerns",
				"Guide early protocol development and improvements",
				"Gracefully transition leadership to community",
			},
		},
		"Hal Finney": {
			category.Cryptography: {
				"Implement reusable proof systems and zero-knowledge protocols",
				"Contribute to PGP and cryptographic privacy tools",
				"Understand advanced cryptographic constructions",
				"Research and implement digital cash systems",
				"Pioneer cryptographic privacy applications",
			},
			category.DistributedSystems: {
				"Design distributed systems for privacy and censorship resistance",
				"Implement peer-to-peer protocols and networking",
				"Understand consensus mechanisms and their trade-offs",
				"Build resilient distributed applications",
			},
			category.Economics: {
				"Understand digital scarcity and monetary economics",
				"Analyze incentive structures in decentralized systems",
				"Research digital cash and payment systems",
			},
			category.Coding: {
				"Master multiple programming languages and paradigms",
				"Contribute to open-source cryptographic software",
				"Write high-quality, secure code for financial applications",
				"Implement complex cryptographic protocols",
			},
			category.Writing: {
				"Write technical papers on cryptography and privacy",
				"Communicate complex technical concepts clearly",
				"Document research and implementation details",
				"Engage in technical discussions and debates",
			},
			category.Community: {
				"Mentor other developers in cryptography and privacy",
				"Contribute to cypherpunk community and ideals",
				"Support and promote privacy-enhancing technologies",
				"Build bridges between technical and non-technical communities",
			},
		},
		"Gavin Andresen": {
			category.Cryptography: {
				"Understand Bitcoin's cryptographic foundations",
				"Implement secure key management systems",
				"Review and audit cryptographic implementations",
			},
			category.DistributedSystems: {
				"Maintain and improve Bitcoin's peer-to-peer network",
				"Understand consensus mechanisms and fork resolution",
				"Design scalable distributed systems",
			},
			category.Economics: {
				"Understand Bitcoin's economic model and incentives",
				"Analyze fee markets and transaction economics",
				"Research scaling solutions and their economic implications",
			},
			category.Coding: {
				"Lead development of Bitcoin Core software",
				"Write production-quality C++ for financial systems",
				"Implement protocol improvements and optimizations",
				"Maintain backward compatibility and consensus rules",
			},
			category.Writing: {
				"Write technical documentation for Bitcoin protocol",
				"Communicate with developers and community members",
				"Document design decisions and protocol changes",
			},
			category.Community: {
				"Lead Bitcoin development community",
				"Coordinate protocol upgrades and improvements",
				"Build consensus among diverse stakeholders",
				"Represent Bitcoin in public forums and conferences",
				"Mentor new developers and contributors",
			},
		},
	}
}
