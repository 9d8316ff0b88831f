package content

import (
	"time"

	"github.com/cryptoedu/presale-server/internal/config"
)

func seedBlogPosts() []BlogPost {
	return []BlogPost{
		{
			Slug:        "how-to-spot-a-rug-pull",
			Title:       "How to Spot a Rug Pull Before It Happens",
			Author:      "Research Desk",
			PublishedAt: time.Date(2025, 11, 18, 9, 0, 0, 0, time.UTC),
			Summary:     "Anonymous teams, unlocked liquidity, and copy-pasted contracts: the warning signs that show up again and again.",
			Body: "Most rug pulls follow the same script. The project appears overnight with a " +
				"polished site and an anonymous team, liquidity is never locked, and the token " +
				"contract carries a mint function the deployer controls. Before putting money " +
				"into any token, check who controls the mint authority, whether liquidity is " +
				"locked and for how long, and whether the team has any verifiable history. " +
				"If you cannot answer all three, walk away.",
			Tags: []string{"safety", "basics"},
		},
		{
			Slug:        "custodial-vs-self-custody",
			Title:       "Custodial vs Self-Custody: What You Actually Control",
			Author:      "Education Team",
			PublishedAt: time.Date(2025, 12, 2, 9, 0, 0, 0, time.UTC),
			Summary:     "Not your keys, not your coins is a slogan. Here is what it means in practice.",
			Body: "When an exchange holds your crypto, you hold a claim against a company, not " +
				"the asset itself. Self-custody reverses that: the seed phrase is the asset. " +
				"That cuts both ways. Nobody can freeze your funds, and nobody can recover " +
				"them for you either. We walk through threat models for both setups and when " +
				"each one is the right choice.",
			Tags: []string{"custody", "basics"},
		},
		{
			Slug:        "reading-a-token-audit",
			Title:       "How to Read a Token Audit Without a CS Degree",
			Author:      "Research Desk",
			PublishedAt: time.Date(2026, 1, 14, 9, 0, 0, 0, time.UTC),
			Summary:     "Audits are not seals of approval. Learn what the severity levels mean and which findings matter.",
			Body: "An audit report is a snapshot of one codebase at one commit, reviewed by one " +
				"team under time pressure. Critical and high findings that remain open at " +
				"launch are disqualifying. Medium findings deserve a written response from " +
				"the team. A long list of informational notes is normal and usually fine. " +
				"Most importantly: check that the audited commit matches what is deployed.",
			Tags: []string{"audits", "due-diligence"},
		},
		{
			Slug:        "why-presale-vesting-matters",
			Title:       "Why Presale Vesting Schedules Matter",
			Author:      "Education Team",
			PublishedAt: time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC),
			Summary:     "Vesting aligns early buyers with the project. No vesting aligns them with the exit.",
			Body: "A presale with 100% unlock at launch invites a sell-off the minute trading " +
				"opens. Linear vesting with a partial immediate release gives early supporters " +
				"liquidity without handing them the whole position at once. When you evaluate " +
				"a presale, the vesting schedule tells you who the token was designed for.",
			Tags: []string{"presale", "tokenomics"},
		},
	}
}

func seedAudit() AuditReport {
	return AuditReport{
		Auditor: "Halborn Security",
		Date:    "2026-01-22",
		Scope:   []string{"Presale program", "Token mint", "Vesting vault"},
		Findings: []AuditFinding{
			{Severity: "high", Title: "Treasury authority lacked two-step transfer", Status: "resolved"},
			{Severity: "medium", Title: "Vesting cliff boundary off-by-one", Status: "resolved"},
			{Severity: "low", Title: "Missing event on allocation update", Status: "resolved"},
			{Severity: "informational", Title: "Redundant account constraint checks", Status: "acknowledged"},
		},
		ReportURL: "https://github.com/cryptoedu/audits/blob/main/halborn-2026-01.pdf",
		Summary: "All high and medium findings were resolved and re-reviewed before the presale " +
			"opened. The audited commit matches the deployed program.",
	}
}

func seedTokenomics(presale config.PresaleConfig) Tokenomics {
	supply := presale.TotalSupply
	pct := func(p float64) uint64 {
		return uint64(float64(supply) * p / 100)
	}
	return Tokenomics{
		TokenSymbol:   presale.TokenSymbol,
		TotalSupply:   supply,
		TokenPriceUSD: presale.TokenPriceUSD,
		Allocations: []Allocation{
			{Category: "Presale", Percent: 30, Tokens: pct(30), Note: "Vested per the published schedule"},
			{Category: "Education fund", Percent: 25, Tokens: pct(25), Note: "Grants for course production and translation"},
			{Category: "Liquidity", Percent: 15, Tokens: pct(15), Note: "Locked for 24 months"},
			{Category: "Team", Percent: 15, Tokens: pct(15), Note: "12 month cliff, 36 month linear vest"},
			{Category: "Treasury", Percent: 10, Tokens: pct(10)},
			{Category: "Advisors", Percent: 5, Tokens: pct(5), Note: "6 month cliff, 24 month linear vest"},
		},
		VestingSummary: "Presale purchases release a portion at the token generation event with the remainder vesting linearly.",
	}
}

func seedRoadmap() []RoadmapPhase {
	return []RoadmapPhase{
		{
			Name:    "Foundation",
			Quarter: "Q4 2025",
			Status:  "completed",
			Items: []string{
				"Foundation incorporated",
				"Core curriculum outline published",
				"Security audit of presale program",
			},
		},
		{
			Name:    "Presale",
			Quarter: "Q1 2026",
			Status:  "in_progress",
			Items: []string{
				"Public presale opens",
				"Scam database launches with community reporting",
				"First ten free courses published",
			},
		},
		{
			Name:    "Launch",
			Quarter: "Q2 2026",
			Status:  "planned",
			Items: []string{
				"Token generation event",
				"DEX liquidity seeded and locked",
				"Certification program pilot",
			},
		},
		{
			Name:    "Growth",
			Quarter: "Q4 2026",
			Status:  "planned",
			Items: []string{
				"Curriculum translated into five languages",
				"University partnership program",
				"Community grant round one",
			},
		},
	}
}

func seedWhitepaper() Document {
	return Document{
		Title:     "CryptoEdu Foundation Whitepaper",
		Version:   "1.2",
		UpdatedAt: "2026-01-10",
		Sections: []DocSection{
			{
				Heading: "Mission",
				Body: "Most people who lose money in crypto lose it to preventable mistakes. The " +
					"foundation funds free, rigorous, vendor-neutral education so that the next " +
					"wave of users arrives informed.",
			},
			{
				Heading: "The EDU Token",
				Body: "EDU funds curriculum production through a transparent on-chain treasury. " +
					"Token holders vote on grant allocations; the token confers no claim on " +
					"foundation assets and is not an investment product.",
			},
			{
				Heading: "Presale Mechanics",
				Body: "The presale accepts SOL at a fixed USD token price. Purchases are bounded " +
					"per transaction, a portion unlocks at the token generation event, and the " +
					"remainder vests linearly. All presale parameters are published before the " +
					"sale opens and do not change.",
			},
			{
				Heading: "Governance",
				Body: "Grant decisions move to token-holder voting after launch, with the " +
					"foundation retaining a veto limited to legal compliance matters for the " +
					"first two years.",
			},
		},
	}
}

func seedPrivacy() Document {
	return Document{
		Title:     "Privacy Policy",
		Version:   "1.0",
		UpdatedAt: "2025-12-01",
		Sections: []DocSection{
			{
				Heading: "What we collect",
				Body: "The presale service reads public wallet balances and records the contact " +
					"details you submit after a purchase. We do not use analytics trackers.",
			},
			{
				Heading: "What we keep",
				Body: "Purchase sessions live in memory and expire automatically. Contact " +
					"submissions are used only to deliver presale updates you asked for.",
			},
			{
				Heading: "What we share",
				Body:    "Nothing. On-chain activity is public by nature; everything else stays with the foundation.",
			},
		},
	}
}

func seedTeam() []TeamMember {
	return []TeamMember{
		{Name: "Mara Lindqvist", Role: "Executive Director", Bio: "Former curriculum lead at a European fintech academy. Ten years in financial literacy programs."},
		{Name: "Devon Okafor", Role: "Head of Research", Bio: "Published analyst covering on-chain forensics and exchange failures since 2018."},
		{Name: "Sif Arnadottir", Role: "Engineering Lead", Bio: "Built settlement infrastructure at two payments companies before moving to open-source crypto tooling."},
		{Name: "Tomas Vega", Role: "Community & Partnerships", Bio: "Runs the scam-report triage team and the university outreach program."},
	}
}

func seedScams() []ScamRecord {
	return []ScamRecord{
		{
			ID:          "scam_seed_1",
			Name:        "SolDoubler",
			Category:    "giveaway",
			Description: "Send 1 SOL, receive 2 back. Classic doubler using spoofed celebrity streams. Wallets drained on send.",
			URL:         "https://soldoubler.example",
			ReportedAt:  time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC),
			Verified:    true,
		},
		{
			ID:          "scam_seed_2",
			Name:        "Phantom Support Desk",
			Category:    "phishing",
			Description: "Fake wallet support accounts replying to help requests on social media, asking users to validate their seed phrase on a look-alike site.",
			ReportedAt:  time.Date(2025, 11, 12, 0, 0, 0, 0, time.UTC),
			Verified:    true,
		},
		{
			ID:          "scam_seed_3",
			Name:        "EDU-Presale.net",
			Category:    "impersonation",
			Description: "Copy of this foundation's site with a swapped treasury address. The only official presale domain is listed in the site footer.",
			URL:         "https://edu-presale.example",
			ReportedAt:  time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC),
			Verified:    true,
		},
		{
			ID:          "scam_seed_4",
			Name:        "AirdropClaimer Pro",
			Category:    "malicious-dapp",
			Description: "Airdrop claim site requesting a token approval that grants unlimited spending to the attacker's program.",
			ReportedAt:  time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
			Verified:    false,
		},
	}
}
